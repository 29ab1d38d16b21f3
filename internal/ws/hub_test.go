package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/vladimirvolkov/palmbreak/internal/middleware"
)

type recordingCreator struct {
	conns chan *Conn
}

func (r *recordingCreator) CreateRoom(c *Conn) { r.conns <- c }

func startHub(t *testing.T, limiter *middleware.IPRateLimiter, maxRooms int) (*Hub, *recordingCreator, string) {
	t.Helper()
	creator := &recordingCreator{conns: make(chan *Conn, 4)}
	hub := NewHub(creator, limiter, nil, maxRooms)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	return hub, creator, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, resp, err := websocket.Dial(ctx, url, nil)
	if err == nil {
		t.Cleanup(func() { c.CloseNow() })
	}
	return c, resp, err
}

func (r *recordingCreator) next(t *testing.T) *Conn {
	t.Helper()
	select {
	case c := <-r.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no room created")
		return nil
	}
}

func TestHubCreatesRoomAndSends(t *testing.T) {
	hub, creator, url := startHub(t, nil, 0)

	c, _, err := dial(t, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := creator.next(t)
	if !strings.HasPrefix(conn.ID, "player-") {
		t.Fatalf("conn ID = %q", conn.ID)
	}
	if s := hub.Stats(); s.ActiveRooms != 1 || s.TotalConnections != 1 {
		t.Fatalf("stats = %+v", s)
	}

	msg, _ := NewMessage(MsgPong, 9, PongPayload{ClientTime: 1})
	if !conn.Send(msg) {
		t.Fatal("Send dropped on an empty queue")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := Decode(data)
	if err != nil || got.Type != MsgPong || got.Tick != 9 {
		t.Fatalf("got %+v (%v), want pong tick 9", got, err)
	}

	// Let the client answer the close handshake.
	go c.Read(context.Background())
	conn.Close()
	if conn.Send(msg) {
		t.Fatal("Send succeeded on a closed conn")
	}
	hub.RoomEnded()
	if s := hub.Stats(); s.ActiveRooms != 0 {
		t.Fatalf("ActiveRooms after RoomEnded = %d", s.ActiveRooms)
	}
}

func TestHubRejectsWhenFull(t *testing.T) {
	hub, creator, url := startHub(t, nil, 1)

	if _, _, err := dial(t, url); err != nil {
		t.Fatalf("first dial: %v", err)
	}
	creator.next(t)

	c, _, err := dial(t, url)
	if err != nil {
		t.Fatalf("second dial: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err = c.Read(ctx)
	if got := websocket.CloseStatus(err); got != websocket.StatusTryAgainLater {
		t.Fatalf("close status = %v (%v), want StatusTryAgainLater", got, err)
	}
	if s := hub.Stats(); s.RejectedFull != 1 || s.ActiveRooms != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestHubPerIPLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 10, time.Second)
	_, creator, url := startHub(t, limiter, 0)

	if _, _, err := dial(t, url); err != nil {
		t.Fatalf("first dial: %v", err)
	}
	creator.next(t)

	_, resp, err := dial(t, url)
	if err == nil {
		t.Fatal("second connection from the same IP accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("response = %v, want 429", resp)
	}
}

func TestReadLoopDropsOverBudget(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(4, 2, time.Hour)
	_, creator, url := startHub(t, limiter, 0)

	c, _, err := dial(t, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := creator.next(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs := conn.ReadLoop(ctx)

	for i := 0; i < 4; i++ {
		msg, _ := NewMessage(MsgPing, uint32(i), PingPayload{ClientTime: uint64(i)})
		data, _ := Encode(msg)
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	for want := uint32(0); want < 2; want++ {
		select {
		case m := <-msgs:
			if m.Tick != want {
				t.Fatalf("tick = %d, want %d", m.Tick, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	}
	select {
	case m := <-msgs:
		t.Fatalf("over-budget message delivered: %+v", m)
	case <-time.After(100 * time.Millisecond):
	}
}
