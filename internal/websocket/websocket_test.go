package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scythe504/skribblr/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	connID string
	raw    string
}

type recordingHandler struct {
	events      chan frame
	disconnects chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		events:      make(chan frame, 16),
		disconnects: make(chan string, 16),
	}
}

func (h *recordingHandler) HandleEvent(connID string, raw []byte) {
	h.events <- frame{connID: connID, raw: string(raw)}
}

func (h *recordingHandler) Disconnect(connID, reason string) {
	h.disconnects <- connID
}

func startHub(t *testing.T, opts Options) (*Hub, *recordingHandler, string) {
	t.Helper()
	hub := NewHub(opts)
	handler := newRecordingHandler()
	hub.SetHandler(handler)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, handler, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubRoundTrip(t *testing.T) {
	hub, handler, url := startHub(t, Options{})
	conn := dial(t, url, nil)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"getPlayers"}`)))

	var got frame
	select {
	case got = <-handler.events:
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the handler")
	}
	assert.Equal(t, `{"type":"getPlayers"}`, got.raw)
	assert.NotEmpty(t, got.connID)
	assert.Equal(t, 1, hub.Count())

	msg := internal.Message[any]{Type: internal.EventChoosing, Data: internal.ChoosingData{Name: "Alice"}}
	require.NoError(t, hub.Send(got.connID, msg))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var decoded internal.Message[internal.ChoosingData]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, internal.EventChoosing, decoded.Type)
	assert.Equal(t, "Alice", decoded.Data.Name)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	select {
	case id := <-handler.disconnects:
		assert.Equal(t, got.connID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect never reported")
	}
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, hub.Send(got.connID, msg), ErrUnknownConnection)
}

func TestHubRateLimitsInboundFrames(t *testing.T) {
	_, handler, url := startHub(t, Options{MessageRate: 0.001, MessageBurst: 2})
	conn := dial(t, url, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message"}`)))
	}
	// A trailing close makes the read pump finish, so every frame has been
	// considered once the disconnect arrives.
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	select {
	case <-handler.disconnects:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect never reported")
	}
	assert.Len(t, handler.events, 2)
}

func TestHubRejectsForeignOrigins(t *testing.T) {
	_, _, url := startHub(t, Options{AllowedOrigins: []string{"https://skribblr.test"}})

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, url, http.Header{"Origin": []string{"https://skribblr.test"}})
}

func TestHubCloseDisconnectsEveryone(t *testing.T) {
	hub, handler, url := startHub(t, Options{})
	dial(t, url, nil)
	dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	hub.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-handler.disconnects:
		case <-time.After(2 * time.Second):
			t.Fatal("disconnect never reported")
		}
	}
	assert.Zero(t, hub.Count())
}

func TestSendUnknownConnection(t *testing.T) {
	hub := NewHub(Options{})
	err := hub.Send("nobody", internal.Message[any]{Type: internal.EventMessage})
	assert.ErrorIs(t, err, ErrUnknownConnection)
}
