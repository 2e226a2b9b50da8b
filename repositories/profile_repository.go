package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourguard/database"
	"tourguard/models"
)

type ProfileRepository struct {
	collection *mongo.Collection
	logger     logrus.FieldLogger
}

func NewProfileRepository(db *mongo.Database, logger logrus.FieldLogger) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection(database.ProfilesCollection),
		logger:     logger,
	}
}

// AppendLocation pushes the sample and trims the history to the newest keep
// entries in a single upsert.
func (pr *ProfileRepository) AppendLocation(ctx context.Context, userID string, sample models.LocationSample, keep int) (models.LocationHistory, error) {
	now := time.Now()
	update := bson.M{
		"$push": bson.M{
			"locationHistory": bson.M{
				"$each":  bson.A{sample},
				"$slice": -keep,
			},
		},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now, "geofences": bson.A{}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"locationHistory": 1})

	var profile models.TouristProfile
	err := pr.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&profile)
	if err != nil {
		pr.logger.WithError(err).WithField("user_id", userID).Error("Failed to append location")
		return nil, err
	}

	return profile.LocationHistory, nil
}

func (pr *ProfileRepository) GetLocationHistory(ctx context.Context, userID string) (models.LocationHistory, error) {
	profile, err := pr.findProfile(ctx, userID, bson.M{"locationHistory": 1})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.LocationHistory{}, nil
		}
		return nil, err
	}
	if profile.LocationHistory == nil {
		return models.LocationHistory{}, nil
	}
	return profile.LocationHistory, nil
}

func (pr *ProfileRepository) AppendGeofence(ctx context.Context, userID string, geofence models.Geofence) error {
	now := time.Now()
	update := bson.M{
		"$push":        bson.M{"geofences": geofence},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now, "locationHistory": bson.A{}},
	}

	_, err := pr.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		pr.logger.WithError(err).WithField("user_id", userID).Error("Failed to append geofence")
		return err
	}
	return nil
}

func (pr *ProfileRepository) ListGeofences(ctx context.Context, userID string) ([]models.Geofence, error) {
	profile, err := pr.findProfile(ctx, userID, bson.M{"geofences": 1})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.Geofence{}, nil
		}
		return nil, err
	}
	if profile.Geofences == nil {
		return []models.Geofence{}, nil
	}
	return profile.Geofences, nil
}

// GetSafetyScore returns nil when no score has been stored yet.
func (pr *ProfileRepository) GetSafetyScore(ctx context.Context, userID string) (*models.SafetyScore, error) {
	profile, err := pr.findProfile(ctx, userID, bson.M{"safetyScore": 1})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile.SafetyScore, nil
}

func (pr *ProfileRepository) UpdateSafetyScore(ctx context.Context, userID string, score models.SafetyScore) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{"safetyScore": score, "updatedAt": now},
		"$setOnInsert": bson.M{
			"createdAt":       now,
			"geofences":       bson.A{},
			"locationHistory": bson.A{},
		},
	}

	_, err := pr.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

func (pr *ProfileRepository) findProfile(ctx context.Context, userID string, projection bson.M) (*models.TouristProfile, error) {
	var profile models.TouristProfile
	err := pr.collection.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(projection)).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		pr.logger.WithError(err).WithField("user_id", userID).Error("Failed to load tourist profile")
		return nil, err
	}
	return &profile, nil
}
