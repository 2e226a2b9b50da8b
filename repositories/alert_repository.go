package repositories

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourguard/database"
	"tourguard/models"
)

type AlertRepository struct {
	collection *mongo.Collection
	logger     logrus.FieldLogger
}

func NewAlertRepository(db *mongo.Database, logger logrus.FieldLogger) *AlertRepository {
	return &AlertRepository{
		collection: db.Collection(database.AlertsCollection),
		logger:     logger,
	}
}

func (ar *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	if alert.Responses == nil {
		alert.Responses = []models.AlertResponse{}
	}

	if _, err := ar.collection.InsertOne(ctx, alert); err != nil {
		ar.logger.WithError(err).Error("Failed to create alert")
		return err
	}
	return nil
}

func (ar *AlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var alert models.Alert
	err = ar.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&alert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		ar.logger.WithError(err).WithField("alert_id", id).Error("Failed to get alert by ID")
		return nil, err
	}

	return &alert, nil
}

func (ar *AlertRepository) List(ctx context.Context, filter models.AlertFilter, offset, limit int) ([]models.Alert, int64, error) {
	query := alertQuery(filter)

	total, err := ar.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := ar.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	alerts := []models.Alert{}
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// ApplyTransition runs the status change, the first-responder claim and the
// response append in one pipeline update on the server.
func (ar *AlertRepository) ApplyTransition(ctx context.Context, id string, transition models.AlertTransition) (*models.Alert, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter, update := transitionUpdate(objectID, transition)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var alert models.Alert
	err = ar.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&alert)
	if err == nil {
		return &alert, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		ar.logger.WithError(err).WithField("alert_id", id).Error("Failed to transition alert")
		return nil, err
	}

	count, countErr := ar.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if countErr != nil {
		return nil, countErr
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusChanged
}

// transitionUpdate builds the filter and pipeline for ApplyTransition. The
// claim treats a missing or empty assignedTo as unassigned.
func transitionUpdate(id primitive.ObjectID, transition models.AlertTransition) (bson.M, mongo.Pipeline) {
	filter := bson.M{"_id": id}
	if len(transition.From) > 0 {
		filter["status"] = bson.M{"$in": transition.From}
	}

	set := bson.M{
		"status":    transition.Status,
		"updatedAt": transition.At,
		"responses": bson.M{"$concatArrays": bson.A{
			bson.M{"$ifNull": bson.A{"$responses", bson.A{}}},
			bson.A{bson.M{"$literal": transition.Response}},
		}},
	}
	if transition.Status == models.AlertStatusResolved {
		set["resolvedAt"] = transition.At
	}
	if transition.ClaimantID != "" {
		set["assignedTo"] = bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$assignedTo", ""}}, ""}},
			bson.M{"$literal": transition.ClaimantID},
			"$assignedTo",
		}}
	}

	return filter, mongo.Pipeline{{{Key: "$set", Value: set}}}
}

func alertQuery(filter models.AlertFilter) bson.M {
	query := bson.M{}
	if filter.SubjectID != "" {
		query["subjectId"] = filter.SubjectID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	return query
}
