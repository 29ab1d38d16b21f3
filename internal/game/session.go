package game

import "log"

// Action is a discrete command from the control surface.
type Action uint8

const (
	ActionStart Action = iota + 1
	ActionPause        // toggles Playing <-> Paused
	ActionLaunch
	ActionRestart
	ActionMenu
)

var actionNames = map[string]Action{
	"start":   ActionStart,
	"pause":   ActionPause,
	"launch":  ActionLaunch,
	"restart": ActionRestart,
	"menu":    ActionMenu,
}

// ParseAction maps a wire name to an Action.
func ParseAction(name string) (Action, bool) {
	a, ok := actionNames[name]
	return a, ok
}

func (a Action) String() string {
	for name, v := range actionNames {
		if v == a {
			return name
		}
	}
	return "unknown"
}

// Session is one single-player game. It is not safe for concurrent use; a
// Runner owns it and serialises every call.
type Session struct {
	cfg      Config
	phase    GamePhase
	tick     uint32
	score    int
	ball     BallState
	paddle   PaddleState
	field    *BlockField
	smoother *Smoother
	events   []Event // produced since the last Snapshot
}

// NewSession returns a session sitting in the menu with a fresh board.
func NewSession(cfg Config) *Session {
	s := &Session{
		cfg:      cfg,
		smoother: NewSmoother(cfg.SmoothingWindow),
	}
	s.reset()
	s.phase = PhaseMenu
	return s
}

func (s *Session) Config() Config      { return s.cfg }
func (s *Session) Phase() GamePhase    { return s.phase }
func (s *Session) Score() int          { return s.score }
func (s *Session) Ball() BallState     { return s.ball }
func (s *Session) Paddle() PaddleState { return s.paddle }

func (s *Session) reset() {
	s.score = 0
	s.ball = NewBall(s.cfg)
	s.paddle = NewPaddle(s.cfg)
	s.field = NewBlockField(s.cfg)
	s.smoother.Reset()
	s.events = s.events[:0]
}

// Apply runs a control action and reports whether it changed anything.
// Actions that make no sense in the current phase are ignored.
func (s *Session) Apply(a Action) bool {
	switch a {
	case ActionStart:
		if s.phase != PhaseMenu {
			return false
		}
		s.reset()
		s.phase = PhasePlaying

	case ActionRestart:
		if !s.phase.Terminal() {
			return false
		}
		s.reset()
		s.phase = PhasePlaying

	case ActionPause:
		switch s.phase {
		case PhasePlaying:
			s.phase = PhasePaused
		case PhasePaused:
			s.phase = PhasePlaying
		default:
			return false
		}

	case ActionLaunch:
		if s.phase != PhasePlaying || !LaunchBall(&s.ball, s.cfg) {
			return false
		}
		s.events = append(s.events, newEvent(EventLaunch))
		log.Printf("LAUNCH: tick=%d dx=%.1f dy=%.1f", s.tick, s.ball.DX, s.ball.DY)

	case ActionMenu:
		if s.phase == PhaseMenu {
			return false
		}
		s.phase = PhaseMenu

	default:
		return false
	}
	return true
}

// PushSample feeds one hand position, already in field pixels, through the
// smoother. The paddle target only follows while playing.
func (s *Session) PushSample(handX float64) {
	smoothed := s.smoother.Push(handX)
	if s.phase != PhasePlaying {
		return
	}
	SetTarget(&s.paddle, smoothed, s.cfg)
}

// Step advances one frame. Outside PhasePlaying it does nothing.
func (s *Session) Step() {
	if s.phase != PhasePlaying {
		return
	}
	s.tick++

	StepPaddle(&s.paddle, s.cfg)

	res := StepBall(&s.ball, s.paddle.Current, s.field.view(), s.cfg)
	if n := s.field.MarkDestroyed(res.Destroyed...); n > 0 {
		s.score += n * s.cfg.ScorePerBlock
	}
	s.events = append(s.events, res.Events...)

	switch {
	case res.Cleared:
		s.phase = PhaseVictory
		log.Printf("VICTORY: tick=%d score=%d", s.tick, s.score)
	case res.FellOut:
		s.phase = PhaseGameOver
		log.Printf("GAMEOVER: tick=%d score=%d remaining=%d", s.tick, s.score, s.field.Remaining())
	}
}

// Snapshot copies the drawable state and hands over the events collected
// since the previous snapshot.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:    s.tick,
		Phase:   s.phase,
		Score:   s.score,
		PaddleX: s.paddle.Current,
		Ball:    s.ball,
		Blocks:  s.field.Blocks(),
	}
	if len(s.events) > 0 {
		snap.Events = make([]Event, len(s.events))
		copy(snap.Events, s.events)
		s.events = s.events[:0]
	}
	return snap
}
