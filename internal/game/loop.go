package game

import (
	"context"
	"sync"
	"time"
)

// Renderer consumes one snapshot per rendered frame. It is only ever called
// from the runner goroutine.
type Renderer interface {
	Render(Snapshot)
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(Snapshot)

func (f RenderFunc) Render(s Snapshot) { f(s) }

// Ticker is the frame scheduler a Runner holds while the game is playing.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default frame scheduler, backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// RunnerOption customises a Runner before Start.
type RunnerOption func(*Runner)

// WithTicker replaces the frame scheduler factory.
func WithTicker(newTicker func(time.Duration) Ticker) RunnerOption {
	return func(r *Runner) { r.newTicker = newTicker }
}

// Runner owns a Session on a single goroutine. Hand samples and actions may
// come from any goroutine; they wait in a mailbox until the next wake or tick.
type Runner struct {
	session   *Session
	sink      Renderer
	interval  time.Duration
	newTicker func(time.Duration) Ticker

	inputMu sync.Mutex
	samples []float64
	actions []Action
	redraw  bool
	wake    chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(s *Session, sink Renderer, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:   s,
		sink:      sink,
		interval:  time.Second / time.Duration(s.Config().TickRate),
		newTicker: NewTimeTicker,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the frame loop. It runs until ctx is cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	go func() {
		r.loop(ctx)
		close(r.done)
	}()
}

// Stop cancels the loop and waits for it to release the frame scheduler.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// Done returns a channel that closes when the frame loop exits.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// PushSample queues a hand position in field pixels.
func (r *Runner) PushSample(x float64) {
	r.inputMu.Lock()
	r.samples = append(r.samples, x)
	r.inputMu.Unlock()
	r.notify()
}

// Do queues a control action.
func (r *Runner) Do(a Action) {
	r.inputMu.Lock()
	r.actions = append(r.actions, a)
	r.inputMu.Unlock()
	r.notify()
}

// Redraw asks for one render even when nothing changed, e.g. after the
// render target was resized.
func (r *Runner) Redraw() {
	r.inputMu.Lock()
	r.redraw = true
	r.inputMu.Unlock()
	r.notify()
}

func (r *Runner) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) loop(ctx context.Context) {
	var (
		ticker Ticker
		tickC  <-chan time.Time
	)
	release := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer release()

	r.render(ctx)

	for {
		// The scheduler is held only while there is a simulation to advance.
		if r.session.Phase() == PhasePlaying {
			if ticker == nil {
				ticker = r.newTicker(r.interval)
				tickC = ticker.C()
			}
		} else {
			release()
		}

		select {
		case <-ctx.Done():
			return
		case <-r.wake:
			if r.drain() {
				r.render(ctx)
			}
		case <-tickC:
			r.drain()
			r.session.Step()
			r.render(ctx)
		}
	}
}

// drain applies queued actions, then queued samples, and reports whether a
// render is due.
func (r *Runner) drain() bool {
	r.inputMu.Lock()
	actions, samples, changed := r.actions, r.samples, r.redraw
	r.actions, r.samples, r.redraw = nil, nil, false
	r.inputMu.Unlock()

	for _, a := range actions {
		if r.session.Apply(a) {
			changed = true
		}
	}
	for _, x := range samples {
		r.session.PushSample(x)
	}
	return changed
}

// render hands the frame to the sink. Without a sink the snapshot is still
// taken so frame events do not accumulate.
func (r *Runner) render(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snap := r.session.Snapshot()
	if r.sink != nil {
		r.sink.Render(snap)
	}
}
