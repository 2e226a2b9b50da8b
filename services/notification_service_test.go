package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourguard/models"
)

type fakeSink struct {
	name string
	err  error

	mu     sync.Mutex
	events []string
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Deliver(_ context.Context, eventType string, _ *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
	return s.err
}

func (s *fakeSink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.events...)
}

func testAlert(severity models.AlertSeverity) *models.Alert {
	return &models.Alert{
		ID:        primitive.NewObjectID(),
		SubjectID: tourist.ID,
		Type:      models.AlertTypePanic,
		Severity:  severity,
		Status:    models.AlertStatusActive,
		Location:  models.AlertLocation{Coordinate: models.Coordinate{Latitude: 1, Longitude: 1}},
		Message:   DefaultPanicMessage,
	}
}

func TestNotificationServiceFanOut(t *testing.T) {
	logger, hook := newTestLogger()
	ok := &fakeSink{name: "ok"}
	broken := &fakeSink{name: "broken", err: errors.New("gateway timeout")}
	svc := NewNotificationService([]AlertSink{broken, ok}, time.Second, logger, newTestMetrics())

	svc.AlertCreated(testAlert(models.AlertSeverityCritical))
	svc.AlertStatusChanged(testAlert(models.AlertSeverityCritical))
	svc.Wait()

	assert.ElementsMatch(t, []string{models.WSTypeAlertCreated, models.WSTypeAlertStatusChanged}, ok.received())
	assert.Len(t, broken.received(), 2)

	var warned int
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Alert notification incomplete" {
			warned++
		}
	}
	assert.Equal(t, 2, warned)
}

func TestNotificationServiceDeliverReportsFailingSink(t *testing.T) {
	logger, _ := newTestLogger()
	svc := NewNotificationService([]AlertSink{
		&fakeSink{name: "fcm"},
		&fakeSink{name: "sms", err: errors.New("invalid number")},
	}, time.Second, logger, newTestMetrics())

	err := svc.Deliver(context.Background(), models.WSTypeAlertCreated, testAlert(models.AlertSeverityHigh))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sms")
}

type fakePushSender struct {
	topic string
	title string
	data  map[string]string
	calls int
}

func (f *fakePushSender) SendToTopic(_ context.Context, topic, title, _ string, data map[string]string) (string, error) {
	f.calls++
	f.topic, f.title, f.data = topic, title, data
	return "msg-1", nil
}

func TestPushServiceOnlyNewAlerts(t *testing.T) {
	sender := &fakePushSender{}
	push := NewPushService(sender, "authorities")
	alert := testAlert(models.AlertSeverityCritical)

	require.NoError(t, push.Deliver(context.Background(), models.WSTypeAlertStatusChanged, alert))
	assert.Zero(t, sender.calls)

	require.NoError(t, push.Deliver(context.Background(), models.WSTypeAlertCreated, alert))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "authorities", sender.topic)
	assert.Equal(t, "CRITICAL alert: panic", sender.title)
	assert.Equal(t, alert.ID.Hex(), sender.data["alertId"])
	assert.Equal(t, "1.000000", sender.data["latitude"])
}

type fakeSMSSender struct {
	mu     sync.Mutex
	to     []string
	bodies []string
	failTo string
}

func (f *fakeSMSSender) SendSMS(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if to == f.failTo {
		return "", errors.New("unreachable handset")
	}
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, body)
	return "SM123", nil
}

func TestSMSServiceEscalatesUrgentAlerts(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSMSSender{failTo: "+15550000002"}
	sms := NewSMSService(sender, []string{"+15550000001", "+15550000002", "+15550000003"}, 600)

	require.NoError(t, sms.Deliver(ctx, models.WSTypeAlertCreated, testAlert(models.AlertSeverityLow)))
	require.NoError(t, sms.Deliver(ctx, models.WSTypeAlertStatusChanged, testAlert(models.AlertSeverityCritical)))
	assert.Empty(t, sender.to)

	alert := testAlert(models.AlertSeverityCritical)
	alert.Location.Address = "Connaught Place"
	err := sms.Deliver(ctx, models.WSTypeAlertCreated, alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+15550000002")

	assert.Equal(t, []string{"+15550000001", "+15550000003"}, sender.to)
	assert.True(t, strings.HasPrefix(sender.bodies[0], "[critical] panic alert for tourist tourist-1 at Connaught Place"))
	assert.Contains(t, sender.bodies[0], alert.ID.Hex())
}

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) BroadcastAlert(eventType string, _ *models.Alert) int {
	f.events = append(f.events, eventType)
	return 1
}

func TestWebSocketServiceForwardsEveryEvent(t *testing.T) {
	logger, _ := newTestLogger()
	broadcaster := &fakeBroadcaster{}
	ws := NewWebSocketService(broadcaster, logger)

	require.NoError(t, ws.Deliver(context.Background(), models.WSTypeAlertCreated, testAlert(models.AlertSeverityLow)))
	require.NoError(t, ws.Deliver(context.Background(), models.WSTypeAlertStatusChanged, testAlert(models.AlertSeverityLow)))
	assert.Equal(t, []string{models.WSTypeAlertCreated, models.WSTypeAlertStatusChanged}, broadcaster.events)
}
