package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "grapheditor/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	received []InboundMessage
	err      error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, sessionID string, msg InboundMessage) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.received = append(d.received, msg)
	return nil, d.err
}

type countingMetrics struct {
	mu     sync.Mutex
	opened int
	closed int
}

func (m *countingMetrics) ConnectionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
}

func (m *countingMetrics) ConnectionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

func (m *countingMetrics) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened, m.closed
}

type testEnv struct {
	hub        *Hub
	dispatcher *fakeDispatcher
	metrics    *countingMetrics
	server     *httptest.Server
	cancel     context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := &countingMetrics{}
	hub := NewHub(metrics, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	dispatcher := &fakeDispatcher{}
	lookup := func(ctx context.Context, sessionID string) (interface{}, error) {
		if sessionID != "s1" {
			return nil, pkgerrors.NewNotFoundError("session")
		}
		return map[string]string{"session_id": sessionID}, nil
	}
	srv := NewServer(hub, dispatcher, lookup, nil, pkgerrors.NewErrorHandler(logger, false), logger)

	router := chi.NewRouter()
	router.Get("/ws/{sessionID}", srv.HandleWebSocket)
	server := httptest.NewServer(router)

	env := &testEnv{hub: hub, dispatcher: dispatcher, metrics: metrics, server: server, cancel: cancel}
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return env
}

func (e *testEnv) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg OutboundMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_ConnectSendsGreetingAndView(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s1")

	assert.Equal(t, TypeConnectionEstablished, readMessage(t, conn).Type)

	view := readMessage(t, conn)
	assert.Equal(t, TypeSessionView, view.Type)
	assert.JSONEq(t, `{"session_id":"s1"}`, string(view.Data))

	assert.Eventually(t, func() bool { return env.hub.ConnectionCount("s1") == 1 }, 2*time.Second, 10*time.Millisecond)
	opened, _ := env.metrics.counts()
	assert.Equal(t, 1, opened)
}

func TestServer_UnknownSessionRejected(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHub_NotifySessionReachesOnlyThatSession(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s1")
	readMessage(t, conn)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return env.hub.ConnectionCount("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	env.hub.NotifySession("other", map[string]int{"n": 1})
	env.hub.NotifySession("s1", map[string]int{"n": 2})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeSessionView, msg.Type)
	assert.JSONEq(t, `{"n":2}`, string(msg.Data))
}

func TestClient_DispatchAckAndError(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s1")
	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(InboundMessage{Type: EventUndo, RequestID: "r1", Payload: json.RawMessage(`{"clicks":1}`)}))
	ack := readMessage(t, conn)
	assert.Equal(t, TypeAck, ack.Type)
	assert.Equal(t, "r1", ack.RequestID)

	env.dispatcher.mu.Lock()
	env.dispatcher.err = pkgerrors.NewStaleReferenceError("node 7")
	env.dispatcher.mu.Unlock()

	require.NoError(t, conn.WriteJSON(InboundMessage{Type: EventDeleteNode, RequestID: "r2"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "r2", msg.RequestID)

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, string(pkgerrors.ErrorTypeStaleReference), data.Type)

	env.dispatcher.mu.Lock()
	defer env.dispatcher.mu.Unlock()
	require.Len(t, env.dispatcher.received, 2)
	assert.Equal(t, EventUndo, env.dispatcher.received[0].Type)
}

func TestClient_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s1")
	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s1")
	readMessage(t, conn)
	require.Eventually(t, func() bool { return env.hub.ConnectionCount("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return env.hub.ConnectionCount("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, closed := env.metrics.counts()
		return closed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_ReplyAfterSendClosed(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	client := NewClient("s1", hub, nil, &fakeDispatcher{}, zap.NewNop())

	client.reply(TypeAck, "r1", nil)
	assert.Len(t, client.send, 1)

	hub.mu.Lock()
	hub.closeSend(client)
	hub.closeSend(client)
	hub.mu.Unlock()

	assert.NotPanics(t, func() { client.reply(TypeAck, "r2", nil) })
	assert.False(t, hub.deliver(client, []byte("late")))
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for len(hub.unregister) < cap(hub.unregister) {
		hub.unregister <- NewClient("s1", hub, nil, &fakeDispatcher{}, zap.NewNop())
	}

	client := NewClient("s1", hub, nil, &fakeDispatcher{}, zap.NewNop())
	left := make(chan struct{})
	go func() {
		hub.leave(client)
		close(left)
	}()

	select {
	case <-left:
	case <-time.After(2 * time.Second):
		t.Fatal("leave blocked on a stopped hub")
	}
	assert.False(t, hub.join(client))
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s1")
	readMessage(t, conn)
	require.Eventually(t, func() bool { return env.hub.ConnectionCount("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	env.cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.Zero(t, env.hub.ConnectionCount("s1"))
	assert.Eventually(t, func() bool {
		_, closed := env.metrics.counts()
		return closed == 1
	}, 2*time.Second, 10*time.Millisecond)
}
