package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
)

func dialHub(t *testing.T, hub *Hub, userID int64) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connected(userID) }, time.Second, 10*time.Millisecond)
	return conn
}

func readNotification(t *testing.T, conn *websocket.Conn) models.Notification {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var n models.Notification
	require.NoError(t, json.Unmarshal(data, &n))
	return n
}

func TestHubPushReachesRecipientOnly(t *testing.T) {
	hub := NewHub(logging.Nop())
	conn := dialHub(t, hub, 7)

	require.NoError(t, hub.Push(context.Background(), models.Notification{ID: 1, RecipientID: 8, Subject: "other"}))
	require.NoError(t, hub.Push(context.Background(), models.Notification{ID: 2, RecipientID: 7, Subject: "mine"}))

	n := readNotification(t, conn)
	assert.Equal(t, int64(2), n.ID)
	assert.Equal(t, "mine", n.Subject)
}

func TestHubPushWithoutConnection(t *testing.T) {
	hub := NewHub(logging.Nop())
	assert.NoError(t, hub.Push(context.Background(), models.Notification{RecipientID: 1}))
}

func TestRedisBridgeDeliversToLocalHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub := NewHub(logging.Nop())
	conn := dialHub(t, hub, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bridge := NewRedisBridge(rdb, "", hub, logging.Nop())
	require.NoError(t, bridge.Start(ctx))

	require.NoError(t, bridge.Push(ctx, models.Notification{
		ID:          11,
		RecipientID: 3,
		Type:        models.NotificationBan,
		Subject:     "Your account has been banned",
	}))

	n := readNotification(t, conn)
	assert.Equal(t, int64(11), n.ID)
	assert.Equal(t, models.NotificationBan, n.Type)
}

type fakeTokens map[int64][]string

func (f fakeTokens) DeviceTokens(_ context.Context, userID int64) ([]string, error) {
	return f[userID], nil
}

type fakeSender struct {
	sent []*messaging.Message
	fail map[string]bool
}

func (s *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	if s.fail[m.Token] {
		return "", errors.New("unregistered")
	}
	s.sent = append(s.sent, m)
	return "projects/x/messages/1", nil
}

func TestFCMPusherSendsToEveryDevice(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"bad": true}}
	p := &FCMPusher{
		client: sender,
		tokens: fakeTokens{5: {"a", "bad", "b"}},
		logger: logging.Nop(),
	}
	err := p.Push(context.Background(), models.Notification{
		ID:          4,
		RecipientID: 5,
		Type:        models.NotificationAdApproved,
		Subject:     "Advertisement approved",
		Body:        "body",
		Metadata:    map[string]string{"advertisementId": "9"},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "Advertisement approved", sender.sent[0].Notification.Title)
	assert.Equal(t, "9", sender.sent[0].Data["advertisementId"])
	assert.Equal(t, "AD_APPROVED", sender.sent[0].Data["type"])
}

func TestFCMPusherAllFailed(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"bad": true}}
	p := &FCMPusher{client: sender, tokens: fakeTokens{5: {"bad"}}, logger: logging.Nop()}
	assert.Error(t, p.Push(context.Background(), models.Notification{RecipientID: 5}))
}
