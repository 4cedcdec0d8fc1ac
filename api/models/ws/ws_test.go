package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"token-backend/internal/metrics"
	"token-backend/utils"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, m *Manager) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewServer(utils.GetRandomString(16), conn).ReadAndWrite(m)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestManager_BroadcastAndHeartbeat(t *testing.T) {
	mt := metrics.New(prometheus.NewRegistry())
	m := NewManager(mt)
	conn := dial(t, newFeedServer(t, m))
	require.Eventually(t, func() bool { return m.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.FeedClients))

	m.Broadcast([]byte(`{"to":"0x01"}`))
	assert.Equal(t, `{"to":"0x01"}`, readText(t, conn))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	assert.Equal(t, "pong", readText(t, conn))

	// 客户端断开后自动注销
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(mt.FeedClients))
}

func TestManager_DropsSlowClient(t *testing.T) {
	m := NewManager(nil)
	slow := &Server{Id: "slow", Send: make(chan []byte, 1)}
	fast := &Server{Id: "fast", Send: make(chan []byte, 4)}
	m.Register(slow)
	m.Register(fast)

	m.Broadcast([]byte("1"))
	m.Broadcast([]byte("2"))

	assert.Equal(t, 1, m.Len())
	assert.Len(t, fast.Send, 2)

	// the buffered message is still readable, then the channel is closed
	assert.Equal(t, "1", string(<-slow.Send))
	_, ok := <-slow.Send
	assert.False(t, ok)

	// unregistering twice is a no-op
	m.Unregister(slow)
	assert.Equal(t, 1, m.Len())
}

func TestManager_CloseDisconnectsAll(t *testing.T) {
	m := NewManager(nil)
	url := newFeedServer(t, m)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return m.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	m.Close()
	assert.Equal(t, 0, m.Len())

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := conn.ReadMessage()
		var closeErr *websocket.CloseError
		assert.ErrorAs(t, err, &closeErr)
	}
}
