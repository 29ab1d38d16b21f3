package game

import (
	"context"
	"log"
	"time"

	"github.com/vladimirvolkov/palmbreak/internal/pose"
	"github.com/vladimirvolkov/palmbreak/internal/ws"
)

// HelloPayload is the first message of a session: everything the browser
// needs to draw before the first snapshot arrives.
type HelloPayload struct {
	Session string `json:"session"`
	Layout  Layout `json:"layout"`
	Config  Config `json:"config"`
	Mirror  bool   `json:"mirror"`
}

// Room binds one websocket player to one Session and its Runner. The
// browser is both the pose source and the render sink.
type Room struct {
	conn   *ws.Conn
	runner *Runner
	mapper pose.Mapper
	cfg    Config
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRoom(conn *ws.Conn, cfg Config, mirror bool, opts ...RunnerOption) *Room {
	r := &Room{
		conn:   conn,
		cfg:    cfg,
		mapper: pose.Mapper{FieldWidth: cfg.FieldWidth, Mirror: mirror},
		done:   make(chan struct{}),
	}
	r.runner = NewRunner(NewSession(cfg), RenderFunc(r.broadcastState), opts...)
	return r
}

func (r *Room) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	hello, err := ws.NewMessage(ws.MsgHello, 0, HelloPayload{
		Session: r.conn.ID,
		Layout:  r.cfg.Layout(),
		Config:  r.cfg,
		Mirror:  r.mapper.Mirror,
	})
	if err == nil {
		r.conn.Send(hello)
	}

	r.runner.Start(ctx)
	go r.readLoop(ctx)

	go func() {
		<-r.runner.Done()
		r.conn.Close()
		close(r.done)
	}()
}

// Stop ends the session and waits for the frame loop to exit.
func (r *Room) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

// Done returns a channel that closes when the room's frame loop exits.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) readLoop(ctx context.Context) {
	msgs := r.conn.ReadLoop(ctx)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("%s disconnected", r.conn.ID)
				r.cancel()
				return
			}
			r.handleMessage(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Room) handleMessage(msg ws.Message) {
	switch msg.Type {
	case ws.MsgHandSample:
		var s pose.Sample
		if err := ws.Unpack(msg, &s); err != nil {
			return
		}
		if x, ok := r.mapper.ToField(s); ok {
			r.runner.PushSample(x)
		}

	case ws.MsgAction:
		var p ws.ActionPayload
		if err := ws.Unpack(msg, &p); err != nil {
			return
		}
		a, ok := ParseAction(p.Action)
		if !ok {
			log.Printf("%s: unknown action %q", r.conn.ID, p.Action)
			return
		}
		r.runner.Do(a)

	case ws.MsgPing:
		var ping ws.PingPayload
		if err := ws.Unpack(msg, &ping); err != nil {
			return
		}
		pong, _ := ws.NewMessage(ws.MsgPong, msg.Tick, ws.PongPayload{
			ClientTime: ping.ClientTime,
			ServerTime: uint64(time.Now().UnixMilli()),
		})
		r.conn.Send(pong)
	}
}

func (r *Room) broadcastState(snap Snapshot) {
	msg, err := ws.NewMessage(ws.MsgSnapshot, snap.Tick, snap)
	if err != nil {
		log.Printf("failed to encode state: %v", err)
		return
	}
	r.conn.Send(msg)
}
