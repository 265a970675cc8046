package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-gauge/internal/log"
)

type written struct {
	kind int
	data []byte
}

// fakeConn blocks reads until closed and records writes.
type fakeConn struct {
	writes    chan written
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		writes: make(chan written, 32),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("closed")
	default:
	}
	f.writes <- written{kind: kind, data: data}
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) next(t *testing.T) written {
	t.Helper()
	select {
	case w := <-f.writes:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a write")
		return written{}
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h, _ := startHub(t)

	a, b := newFakeConn(), newFakeConn()
	go NewClient(h, a).Run()
	go NewClient(h, b).Run()
	waitClients(t, h, 2)

	h.BroadcastBinary([]byte{0xff, 0xd8})
	require.NoError(t, h.BroadcastEvent(EventStatus, map[string]string{"label": "Normal"}))

	for _, conn := range []*fakeConn{a, b} {
		w := conn.next(t)
		assert.Equal(t, websocket.BinaryMessage, w.kind)
		assert.Equal(t, []byte{0xff, 0xd8}, w.data)

		w = conn.next(t)
		assert.Equal(t, websocket.TextMessage, w.kind)
		assert.JSONEq(t, `{"kind":"status","data":{"label":"Normal"}}`, string(w.data))
	}
}

func TestHub_Greeting(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	greeting, err := NewEventMessage(EventStatus, map[string]bool{"hello": true})
	require.NoError(t, err)
	go NewClient(h, conn).Run(greeting)

	w := conn.next(t)
	assert.Equal(t, websocket.TextMessage, w.kind)
	assert.JSONEq(t, `{"kind":"status","data":{"hello":true}}`, string(w.data))
}

func TestHub_ClientDisconnect(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	waitClients(t, h, 1)

	conn.Close()
	waitClients(t, h, 0)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h, cancel := startHub(t)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	waitClients(t, h, 1)
	assert.True(t, h.IsRunning())

	cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.False(t, h.IsRunning())
	assert.Zero(t, h.ClientCount())

	late := newFakeConn()
	NewClient(h, late).Run()
	select {
	case <-late.closed:
	default:
		t.Error("a client joining a stopped hub should be closed")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("idle", log.Discard())

	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.BroadcastBinary([]byte{byte(i)})
	}
	assert.Equal(t, int64(10), h.Dropped())
}

func TestHub_BroadcastEventError(t *testing.T) {
	h := New("bad", nil)
	assert.Error(t, h.BroadcastEvent(EventStatus, make(chan int)))
	assert.Zero(t, len(h.broadcast))
}

func TestNewEventMessage(t *testing.T) {
	tests := []struct {
		kind EventKind
		v    any
		want string
	}{
		{EventStatus, map[string]string{"state": "tracking"}, `{"kind":"status","data":{"state":"tracking"}}`},
		{EventLocked, map[string]string{"label": "Sunny"}, `{"kind":"locked","data":{"label":"Sunny"}}`},
		{EventEnded, nil, `{"kind":"ended","data":null}`},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			msg, err := NewEventMessage(tc.kind, tc.v)
			require.NoError(t, err)
			assert.Equal(t, TextMessage, msg.Type)
			assert.JSONEq(t, tc.want, string(msg.Data))

			var ev Event
			require.NoError(t, json.Unmarshal(msg.Data, &ev))
			assert.Equal(t, tc.kind, ev.Kind)
		})
	}
}
