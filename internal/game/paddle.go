package game

// PaddleState holds where the player wants the paddle and where it is.
type PaddleState struct {
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
}

// NewPaddle centres the paddle in the field.
func NewPaddle(cfg Config) PaddleState {
	x := cfg.MaxPaddleX() / 2
	return PaddleState{Target: x, Current: x}
}

func clampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// SetTarget centres the paddle under handX (field pixels), kept inside the field.
func SetTarget(p *PaddleState, handX float64, cfg Config) {
	p.Target = clampF(handX-cfg.PaddleWidth/2, 0, cfg.MaxPaddleX())
}

// Ease moves current a fixed fraction of the way toward target. With factor
// in (0,1) the result never passes target.
func Ease(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

func StepPaddle(p *PaddleState, cfg Config) {
	p.Target = clampF(p.Target, 0, cfg.MaxPaddleX())
	p.Current = Ease(p.Current, p.Target, cfg.SmoothingFactor)
}
