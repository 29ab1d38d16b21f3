package game

import "math"

// NewBall returns a resting ball in the middle of the field.
func NewBall(cfg Config) BallState {
	return BallState{
		X: cfg.FieldWidth/2 - cfg.BallSize/2,
		Y: cfg.FieldHeight/2 - cfg.BallSize/2,
	}
}

// LaunchBall sets a resting ball moving up and to the right. It reports
// false when the ball is already in play.
func LaunchBall(b *BallState, cfg Config) bool {
	if b.Moving {
		return false
	}
	b.DX = cfg.BallSpeed
	b.DY = -cfg.BallSpeed
	b.Moving = true
	return true
}

// StepResult is what one ball step did to the rest of the game.
type StepResult struct {
	Destroyed []int
	Events    []Event
	Cleared   bool // no standing block left after this step
	FellOut   bool // ball went below the field bottom
}

// StepBall advances b by one frame against the walls, the paddle at paddleX
// and the standing blocks. blocks is read only; hits are reported in
// StepResult.Destroyed for the caller to apply.
func StepBall(b *BallState, paddleX float64, blocks []Block, cfg Config) StepResult {
	var res StepResult
	if !b.Moving {
		return res
	}

	b.X += b.DX
	b.Y += b.DY

	checkWalls(b, cfg, &res)
	checkPaddle(b, paddleX, cfg, &res)
	checkBlocks(b, blocks, cfg, &res)

	standing := 0
	for i := range blocks {
		if !blocks[i].Destroyed {
			standing++
		}
	}
	if standing-len(res.Destroyed) <= 0 {
		res.Cleared = true
		res.Events = append(res.Events, newEvent(EventVictory))
		return res
	}

	if b.Y > cfg.FieldHeight {
		res.FellOut = true
		res.Events = append(res.Events, newEvent(EventGameOver))
	}
	return res
}

func checkWalls(b *BallState, cfg Config, res *StepResult) {
	// Left wall
	if b.X <= 0 {
		b.X = 0
		b.DX = math.Abs(b.DX)
		res.Events = append(res.Events, newEvent(EventWall))
	}

	// Right wall
	if b.X+cfg.BallSize >= cfg.FieldWidth {
		b.X = cfg.FieldWidth - cfg.BallSize
		b.DX = -math.Abs(b.DX)
		res.Events = append(res.Events, newEvent(EventWall))
	}

	// Top wall; the bottom stays open
	if b.Y <= 0 {
		b.Y = 0
		b.DY = math.Abs(b.DY)
		res.Events = append(res.Events, newEvent(EventWall))
	}
}

func checkPaddle(b *BallState, paddleX float64, cfg Config, res *StepResult) {
	paddleY := cfg.PaddleY()
	if b.Y+cfg.BallSize < paddleY {
		return
	}
	if b.X+cfg.BallSize < paddleX || b.X > paddleX+cfg.PaddleWidth {
		return
	}

	// Angle depends on where the ball hit: centre sends it straight up,
	// the edges at ±MaxBounceAngle.
	var norm float64
	if half := cfg.PaddleWidth / 2; half > 0 {
		hitPoint := (b.X + cfg.BallSize/2) - (paddleX + half)
		norm = clampF(hitPoint/half, -1, 1)
	}
	angle := norm * MaxBounceAngle

	speed := math.Sqrt(b.DX*b.DX + b.DY*b.DY)
	if speed > 0 {
		b.DX = speed * math.Sin(angle)
		b.DY = -math.Abs(speed * math.Cos(angle))
	}
	b.Y = paddleY - cfg.BallSize
	res.Events = append(res.Events, newEvent(EventPaddle))
}

// checkBlocks destroys at most one block per step: the first standing block,
// in row-major order, whose box overlaps the ball's.
func checkBlocks(b *BallState, blocks []Block, cfg Config, res *StepResult) {
	halfW := (cfg.BallSize + cfg.BlockWidth) / 2
	halfH := (cfg.BallSize + cfg.BlockHeight) / 2
	ballCX := b.X + cfg.BallSize/2
	ballCY := b.Y + cfg.BallSize/2

	for i := range blocks {
		blk := &blocks[i]
		if blk.Destroyed {
			continue
		}
		dxc := ballCX - (blk.X + cfg.BlockWidth/2)
		dyc := ballCY - (blk.Y + cfg.BlockHeight/2)
		if math.Abs(dxc) > halfW || math.Abs(dyc) > halfH {
			continue
		}

		// Minkowski sum: the axis with the smaller normalised penetration
		// is the one that was crossed.
		if math.Abs(halfW*dyc) > math.Abs(halfH*dxc) {
			b.DY = -b.DY
		} else {
			b.DX = -b.DX
		}

		res.Destroyed = append(res.Destroyed, i)
		res.Events = append(res.Events, Event{Kind: EventBlock, Block: i})
		return
	}
}
