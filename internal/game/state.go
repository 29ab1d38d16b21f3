package game

import (
	"errors"
	"fmt"
	"math"
)

// Default tuning. Field units are pixels of the browser canvas.
const (
	DefaultTickRate = 60
	MaxTickRate     = 1000

	DefaultFieldWidth  = 800.0
	DefaultFieldHeight = 600.0

	DefaultBlockRows   = 5
	DefaultBlockCols   = 10
	DefaultBlockWidth  = 75.0
	DefaultBlockHeight = 20.0
	DefaultBlockGap    = 5.0
	DefaultTopMargin   = 50.0

	DefaultPaddleWidth  = 100.0
	DefaultPaddleHeight = 15.0
	DefaultPaddleOffset = 40.0 // paddle top sits this far above the field bottom

	DefaultBallSize  = 10.0
	DefaultBallSpeed = 5.0

	DefaultSmoothingWindow = 5
	DefaultSmoothingFactor = 0.3

	DefaultScorePerBlock = 10

	// MaxBounceAngle is the steepest rebound off the paddle edge (60°).
	MaxBounceAngle = math.Pi / 3
)

// Config holds the tunable geometry and physics of one game.
type Config struct {
	TickRate int `toml:"tick_rate" json:"tickRate"`

	FieldWidth  float64 `toml:"field_width" json:"fieldWidth"`
	FieldHeight float64 `toml:"field_height" json:"fieldHeight"`

	BlockRows   int     `toml:"block_rows" json:"blockRows"`
	BlockCols   int     `toml:"block_cols" json:"blockCols"`
	BlockWidth  float64 `toml:"block_width" json:"blockWidth"`
	BlockHeight float64 `toml:"block_height" json:"blockHeight"`
	BlockGap    float64 `toml:"block_gap" json:"blockGap"`
	TopMargin   float64 `toml:"top_margin" json:"topMargin"`

	PaddleWidth  float64 `toml:"paddle_width" json:"paddleWidth"`
	PaddleHeight float64 `toml:"paddle_height" json:"paddleHeight"`
	PaddleOffset float64 `toml:"paddle_offset" json:"paddleOffset"`

	BallSize  float64 `toml:"ball_size" json:"ballSize"`
	BallSpeed float64 `toml:"ball_speed" json:"ballSpeed"`

	SmoothingWindow int     `toml:"smoothing_window" json:"smoothingWindow"`
	SmoothingFactor float64 `toml:"smoothing_factor" json:"smoothingFactor"`

	ScorePerBlock int `toml:"score_per_block" json:"scorePerBlock"`
}

// DefaultConfig returns the stock game tuning.
func DefaultConfig() Config {
	return Config{
		TickRate:        DefaultTickRate,
		FieldWidth:      DefaultFieldWidth,
		FieldHeight:     DefaultFieldHeight,
		BlockRows:       DefaultBlockRows,
		BlockCols:       DefaultBlockCols,
		BlockWidth:      DefaultBlockWidth,
		BlockHeight:     DefaultBlockHeight,
		BlockGap:        DefaultBlockGap,
		TopMargin:       DefaultTopMargin,
		PaddleWidth:     DefaultPaddleWidth,
		PaddleHeight:    DefaultPaddleHeight,
		PaddleOffset:    DefaultPaddleOffset,
		BallSize:        DefaultBallSize,
		BallSpeed:       DefaultBallSpeed,
		SmoothingWindow: DefaultSmoothingWindow,
		SmoothingFactor: DefaultSmoothingFactor,
		ScorePerBlock:   DefaultScorePerBlock,
	}
}

// ErrBadConfig is wrapped by every Validate failure.
var ErrBadConfig = errors.New("invalid game config")

// Validate rejects geometry the simulation cannot run on.
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0 || c.TickRate > MaxTickRate:
		return fmt.Errorf("%w: tick_rate %d outside [1, %d]", ErrBadConfig, c.TickRate, MaxTickRate)
	case c.FieldWidth <= 0 || c.FieldHeight <= 0:
		return fmt.Errorf("%w: field must have positive size, got %gx%g", ErrBadConfig, c.FieldWidth, c.FieldHeight)
	case c.BlockRows < 1 || c.BlockCols < 1:
		return fmt.Errorf("%w: need at least one block, got %dx%d", ErrBadConfig, c.BlockRows, c.BlockCols)
	case c.BlockWidth <= 0 || c.BlockHeight <= 0 || c.BlockGap < 0:
		return fmt.Errorf("%w: bad block geometry", ErrBadConfig)
	case float64(c.BlockCols)*(c.BlockWidth+c.BlockGap)-c.BlockGap > c.FieldWidth:
		return fmt.Errorf("%w: %d columns do not fit in field width %g", ErrBadConfig, c.BlockCols, c.FieldWidth)
	case c.PaddleWidth < 0 || c.PaddleWidth > c.FieldWidth:
		return fmt.Errorf("%w: paddle_width %g outside [0, %g]", ErrBadConfig, c.PaddleWidth, c.FieldWidth)
	case c.PaddleOffset <= 0 || c.PaddleOffset >= c.FieldHeight:
		return fmt.Errorf("%w: paddle_offset %g outside (0, %g)", ErrBadConfig, c.PaddleOffset, c.FieldHeight)
	case c.TopMargin+float64(c.BlockRows)*(c.BlockHeight+c.BlockGap) >= c.FieldHeight-c.PaddleOffset:
		return fmt.Errorf("%w: blocks overlap the paddle row", ErrBadConfig)
	case c.BallSize <= 0 || c.BallSize >= c.FieldWidth:
		return fmt.Errorf("%w: ball_size %g", ErrBadConfig, c.BallSize)
	case c.BallSpeed <= 0:
		return fmt.Errorf("%w: ball_speed must be positive", ErrBadConfig)
	case c.SmoothingWindow < 1:
		return fmt.Errorf("%w: smoothing_window must be >= 1", ErrBadConfig)
	case c.SmoothingFactor <= 0 || c.SmoothingFactor >= 1:
		return fmt.Errorf("%w: smoothing_factor %g outside (0,1)", ErrBadConfig, c.SmoothingFactor)
	case c.ScorePerBlock < 0:
		return fmt.Errorf("%w: score_per_block must not be negative", ErrBadConfig)
	}
	return nil
}

// PaddleY is the y of the paddle's top edge.
func (c Config) PaddleY() float64 {
	return c.FieldHeight - c.PaddleOffset
}

// MaxPaddleX is the right-most legal paddle x.
func (c Config) MaxPaddleX() float64 {
	return c.FieldWidth - c.PaddleWidth
}

// Layout is the static geometry a renderer needs once per session.
type Layout struct {
	FieldWidth   float64 `json:"fieldWidth"`
	FieldHeight  float64 `json:"fieldHeight"`
	BlockWidth   float64 `json:"blockWidth"`
	BlockHeight  float64 `json:"blockHeight"`
	BlockGap     float64 `json:"blockGap"`
	TopMargin    float64 `json:"topMargin"`
	PaddleWidth  float64 `json:"paddleWidth"`
	PaddleHeight float64 `json:"paddleHeight"`
	PaddleY      float64 `json:"paddleY"`
	BallSize     float64 `json:"ballSize"`
}

// Layout derives the renderer geometry from c.
func (c Config) Layout() Layout {
	return Layout{
		FieldWidth:   c.FieldWidth,
		FieldHeight:  c.FieldHeight,
		BlockWidth:   c.BlockWidth,
		BlockHeight:  c.BlockHeight,
		BlockGap:     c.BlockGap,
		TopMargin:    c.TopMargin,
		PaddleWidth:  c.PaddleWidth,
		PaddleHeight: c.PaddleHeight,
		PaddleY:      c.PaddleY(),
		BallSize:     c.BallSize,
	}
}

type GamePhase uint8

const (
	PhaseMenu GamePhase = iota
	PhasePlaying
	PhasePaused
	PhaseGameOver
	PhaseVictory
)

var phaseNames = [...]string{
	PhaseMenu:     "menu",
	PhasePlaying:  "playing",
	PhasePaused:   "paused",
	PhaseGameOver: "gameover",
	PhaseVictory:  "victory",
}

func (p GamePhase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Terminal reports whether p only leaves through restart or menu.
func (p GamePhase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseVictory
}

type BallState struct {
	X      float64 `json:"x"` // top-left of the bounding box
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Moving bool    `json:"moving"`
}

type Block struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Destroyed bool    `json:"destroyed"`
}

// Snapshot is the read-only view handed to renderers after every frame.
type Snapshot struct {
	Tick    uint32    `json:"tick"`
	Phase   GamePhase `json:"phase"`
	Score   int       `json:"score"`
	PaddleX float64   `json:"paddleX"`
	Ball    BallState `json:"ball"`
	Blocks  []Block   `json:"blocks"`
	Events  []Event   `json:"events,omitempty"`
}
