package game

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func hasEvent(events []Event, k EventKind) bool {
	for _, e := range events {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func TestLaunchBall(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBall(cfg)
	if b.X != 395 || b.Y != 295 || b.Moving {
		t.Fatalf("NewBall = %+v, want resting at (395,295)", b)
	}
	if cx, cy := b.X+cfg.BallSize/2, b.Y+cfg.BallSize/2; cx != 400 || cy != 300 {
		t.Fatalf("ball centre = (%g,%g), want field centre (400,300)", cx, cy)
	}

	if !LaunchBall(&b, cfg) {
		t.Fatal("LaunchBall on resting ball returned false")
	}
	if b.DX != 5 || b.DY != -5 || !b.Moving {
		t.Fatalf("after launch = %+v, want dx=5 dy=-5 moving", b)
	}
	if LaunchBall(&b, cfg) {
		t.Fatal("second LaunchBall should be refused")
	}
}

func TestStepBallResting(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBall(cfg)
	res := StepBall(&b, 350, NewBlockField(cfg).Blocks(), cfg)

	if b != NewBall(cfg) || len(res.Events) != 0 || res.Cleared || res.FellOut {
		t.Fatalf("resting ball moved: %+v %+v", b, res)
	}
}

func TestStepBallFreeFlight(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBall(cfg)
	LaunchBall(&b, cfg)

	res := StepBall(&b, 350, NewBlockField(cfg).Blocks(), cfg)
	if b.X != 400 || b.Y != 290 {
		t.Fatalf("position = (%g,%g), want (400,290)", b.X, b.Y)
	}
	if len(res.Events) != 0 || len(res.Destroyed) != 0 || res.Cleared || res.FellOut {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestStepBallWalls(t *testing.T) {
	cfg := DefaultConfig()
	blocks := NewBlockField(cfg).Blocks()

	tests := []struct {
		name   string
		ball   BallState
		wantX  float64
		wantY  float64
		wantDX float64
		wantDY float64
	}{
		{"left", BallState{X: 2, Y: 300, DX: -5, DY: -5, Moving: true}, 0, 295, 5, -5},
		{"right", BallState{X: 788, Y: 300, DX: 5, DY: -5, Moving: true}, 790, 295, -5, -5},
		{"top", BallState{X: 395, Y: 2, DX: 5, DY: -5, Moving: true}, 400, 0, 5, 5},
		{"corner", BallState{X: 1, Y: 1, DX: -5, DY: -5, Moving: true}, 0, 0, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.ball
			res := StepBall(&b, 350, blocks, cfg)
			if b.X != tt.wantX || b.Y != tt.wantY || b.DX != tt.wantDX || b.DY != tt.wantDY {
				t.Fatalf("ball = %+v, want pos (%g,%g) vel (%g,%g)", b, tt.wantX, tt.wantY, tt.wantDX, tt.wantDY)
			}
			if !hasEvent(res.Events, EventWall) {
				t.Fatalf("no wall event in %+v", res.Events)
			}
		})
	}
}

func TestStepBallStaysInField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PaddleWidth = cfg.FieldWidth // the floor always returns the ball
	blocks := []Block{{X: 0, Y: -1000}}

	b := BallState{X: 123, Y: 200, DX: 7, DY: -3, Moving: true}
	for i := 0; i < 500; i++ {
		res := StepBall(&b, 0, blocks, cfg)
		if b.X < 0 || b.X > cfg.FieldWidth-cfg.BallSize {
			t.Fatalf("step %d: x = %g outside [0, %g]", i, b.X, cfg.FieldWidth-cfg.BallSize)
		}
		if b.Y < 0 || b.Y > cfg.PaddleY()-cfg.BallSize {
			t.Fatalf("step %d: y = %g outside [0, %g]", i, b.Y, cfg.PaddleY()-cfg.BallSize)
		}
		if res.FellOut || res.Cleared {
			t.Fatalf("step %d: unexpected result %+v", i, res)
		}
	}
}

func TestStepBallPaddle(t *testing.T) {
	cfg := DefaultConfig()
	blocks := NewBlockField(cfg).Blocks()
	const paddleX = 350 // spans 350..450, centre 400

	tests := []struct {
		name   string
		x      float64
		wantDX float64
		wantDY float64
	}{
		{"dead centre", 395, 0, -5},
		{"right edge", 445, 5 * math.Sin(MaxBounceAngle), -5 * math.Cos(MaxBounceAngle)},
		{"left edge", 345, -5 * math.Sin(MaxBounceAngle), -5 * math.Cos(MaxBounceAngle)},
		{"past right edge clamps", 449, 5 * math.Sin(MaxBounceAngle), -5 * math.Cos(MaxBounceAngle)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BallState{X: tt.x, Y: 548, DX: 0, DY: 5, Moving: true}
			res := StepBall(&b, paddleX, blocks, cfg)

			if !approx(b.DX, tt.wantDX) || !approx(b.DY, tt.wantDY) {
				t.Fatalf("velocity = (%g,%g), want (%g,%g)", b.DX, b.DY, tt.wantDX, tt.wantDY)
			}
			if b.Y != cfg.PaddleY()-cfg.BallSize {
				t.Fatalf("ball not snapped above paddle: y=%g", b.Y)
			}
			if !approx(math.Hypot(b.DX, b.DY), 5) {
				t.Fatalf("speed changed to %g", math.Hypot(b.DX, b.DY))
			}
			if !hasEvent(res.Events, EventPaddle) {
				t.Fatalf("no paddle event in %+v", res.Events)
			}
		})
	}
}

func TestStepBallPaddleMiss(t *testing.T) {
	cfg := DefaultConfig()
	b := BallState{X: 10, Y: 598, DY: 5, Moving: true}

	res := StepBall(&b, 350, NewBlockField(cfg).Blocks(), cfg)
	if !res.FellOut || res.Cleared {
		t.Fatalf("result = %+v, want FellOut", res)
	}
	if !hasEvent(res.Events, EventGameOver) {
		t.Fatalf("no gameover event in %+v", res.Events)
	}
}

func TestStepBallBlockFromBelow(t *testing.T) {
	cfg := DefaultConfig()
	blocks := NewBlockField(cfg).Blocks()

	// Block 45 is row 4, column 5: (400,150)..(475,170).
	b := BallState{X: 430, Y: 172, DY: -5, Moving: true}
	res := StepBall(&b, 350, blocks, cfg)

	if len(res.Destroyed) != 1 || res.Destroyed[0] != 45 {
		t.Fatalf("Destroyed = %v, want [45]", res.Destroyed)
	}
	if b.DY != 5 || b.DX != 0 {
		t.Fatalf("velocity = (%g,%g), want (0,5)", b.DX, b.DY)
	}
	if blocks[45].Destroyed {
		t.Fatal("StepBall must not mutate the block slice")
	}
	found := false
	for _, e := range res.Events {
		if e.Kind == EventBlock && e.Block == 45 {
			found = true
		}
	}
	if !found {
		t.Fatalf("no block event for 45 in %+v", res.Events)
	}
}

func TestStepBallBlockFromSide(t *testing.T) {
	cfg := DefaultConfig()
	blocks := NewBlockField(cfg).Blocks()

	// Moving right into the left face of block 45 at mid-height.
	b := BallState{X: 392, Y: 155, DX: 5, Moving: true}
	res := StepBall(&b, 350, blocks, cfg)

	if len(res.Destroyed) != 1 || res.Destroyed[0] != 45 {
		t.Fatalf("Destroyed = %v, want [45]", res.Destroyed)
	}
	if b.DX != -5 || b.DY != 0 {
		t.Fatalf("velocity = (%g,%g), want (-5,0)", b.DX, b.DY)
	}
}

func TestStepBallOneBlockPerFrame(t *testing.T) {
	cfg := DefaultConfig()
	blocks := NewBlockField(cfg).Blocks()

	// Centred on the gap between blocks 40 and 41, overlapping both.
	b := BallState{X: 72.5, Y: 160, DY: -5, Moving: true}
	res := StepBall(&b, 350, blocks, cfg)

	if len(res.Destroyed) != 1 || res.Destroyed[0] != 40 {
		t.Fatalf("Destroyed = %v, want only [40]", res.Destroyed)
	}
}

func TestStepBallSkipsDestroyed(t *testing.T) {
	cfg := DefaultConfig()
	field := NewBlockField(cfg)
	field.MarkDestroyed(40)

	b := BallState{X: 72.5, Y: 160, DY: -5, Moving: true}
	res := StepBall(&b, 350, field.Blocks(), cfg)

	if len(res.Destroyed) != 1 || res.Destroyed[0] != 41 {
		t.Fatalf("Destroyed = %v, want [41]", res.Destroyed)
	}
}

func TestStepBallVictoryBeatsFallOut(t *testing.T) {
	cfg := DefaultConfig()
	// A lone block straddling the bottom edge; the ball clears it and
	// leaves the field in the same frame.
	blocks := []Block{{X: 0, Y: 595}}
	b := BallState{X: 10, Y: 598, DY: 5, Moving: true}

	res := StepBall(&b, 350, blocks, cfg)
	if !res.Cleared {
		t.Fatalf("result = %+v, want Cleared", res)
	}
	if res.FellOut {
		t.Fatal("FellOut must not be reported together with Cleared")
	}
	if hasEvent(res.Events, EventGameOver) || !hasEvent(res.Events, EventVictory) {
		t.Fatalf("events = %+v, want victory only", res.Events)
	}
}
