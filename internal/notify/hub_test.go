package notify

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stut/displayproxy/internal/buttons"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestHubPublishFansOut(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	waitForClients(t, hub, 2)

	hub.Publish(buttons.Press{Label: "A", Time: 1700000000.25})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"button":"A","time":1700000000.25}`, string(data))
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// publishing with no clients is a no-op
	hub.Publish(buttons.Press{Label: "A", Time: 1})
}

func TestHubPublishDoesNotBlockOnSlowClient(t *testing.T) {
	hub, url := startHub(t)
	dial(t, url)
	waitForClients(t, hub, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < messageBufferSize*10; i++ {
			hub.Publish(buttons.Press{Label: "A", Time: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a client that never reads")
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Close())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if assert.ErrorAs(t, err, &closeErr) {
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
		assert.Contains(t, closeErr.Text, "shutting down")
	}
	assert.Zero(t, hub.Clients())
}

func TestClientReceivesPresses(t *testing.T) {
	hub, url := startHub(t)

	var mu sync.Mutex
	var got []buttons.Press
	client := NewClient(url, func(p buttons.Press) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})
	require.NoError(t, client.Connect())
	t.Cleanup(client.Close)
	waitForClients(t, hub, 1)

	hub.Publish(buttons.Press{Label: "C", Time: 3})
	hub.Publish(buttons.Press{Label: "D", Time: 4})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []buttons.Press{{Label: "C", Time: 3}, {Label: "D", Time: 4}}, got)

	hub.Close()
	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed after hub shutdown")
	}
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, b}
	f.Publish(buttons.Press{Label: "A", Time: 1})
	require.NoError(t, f.Close())

	assert.Len(t, a.presses, 1)
	assert.Len(t, b.presses, 1)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

type recorder struct {
	presses []buttons.Press
	closed  bool
}

func (r *recorder) Publish(p buttons.Press) { r.presses = append(r.presses, p) }

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestEventsURL(t *testing.T) {
	for in, want := range map[string]string{
		"frame.local:8000":          "ws://frame.local:8000/events",
		"http://frame.local:8000":   "ws://frame.local:8000/events",
		"https://frame.example/":    "wss://frame.example/events",
		"ws://127.0.0.1:9/events":   "ws://127.0.0.1:9/events",
		"wss://frame.example/other": "wss://frame.example/other",
	} {
		got, err := EventsURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "ftp://frame.local", "http://"} {
		_, err := EventsURL(bad)
		assert.Error(t, err, bad)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchPrintsPressesUntilCancelled(t *testing.T) {
	hub, url := startHub(t)
	out := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, url, out) }()
	waitForClients(t, hub, 1)

	hub.Publish(buttons.Press{Label: "B", Time: 2.5})
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "\n")
	}, 2*time.Second, 5*time.Millisecond)
	assert.JSONEq(t, `{"button":"B","time":2.5}`, strings.TrimSpace(out.String()))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchReportsServerShutdown(t *testing.T) {
	hub, url := startHub(t)

	done := make(chan error, 1)
	go func() { done <- Watch(context.Background(), url, io.Discard) }()
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStreamClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after server shutdown")
	}
}

func TestWatchDialFailure(t *testing.T) {
	err := Watch(context.Background(), "127.0.0.1:1", io.Discard)
	assert.Error(t, err)
}
