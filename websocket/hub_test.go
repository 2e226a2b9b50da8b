package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourguard/models"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := models.UserIdentity{ID: r.URL.Query().Get("id"), Role: models.RolePolice}
		assert.NoError(t, ServeWS(hub, w, r, identity))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastAlert(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, url+"?id=police-1")
	second := dial(t, url+"?id=police-2")

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	alert := &models.Alert{
		ID:        primitive.NewObjectID(),
		SubjectID: "tourist-1",
		Type:      models.AlertTypePanic,
		Severity:  models.AlertSeverityCritical,
		Status:    models.AlertStatusActive,
		Message:   "help",
	}
	assert.Equal(t, 2, hub.BroadcastAlert(models.WSTypeAlertCreated, alert))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg struct {
			Type string              `json:"type"`
			Data models.WSAlertEvent `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, models.WSTypeAlertCreated, msg.Type)
		assert.Equal(t, alert.ID.Hex(), msg.Data.AlertID)
		assert.Equal(t, models.AlertSeverityCritical, msg.Data.Severity)
	}
}

func TestHubPingAndDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url+"?id=police-1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping", "requestId": "r-1"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var reply models.WSMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, models.WSTypePong, reply.Type)
	assert.Equal(t, "r-1", reply.RequestID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, hub.GetStats().TotalConnections)
}
