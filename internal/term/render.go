// Package term is the terminal front end: a tcell render sink for game
// snapshots and the keyboard/mouse control surface.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/vladimirvolkov/palmbreak/internal/game"
)

// Minimum usable terminal size; below it only a notice is drawn.
const (
	MinCols = 20
	MinRows = 8
)

const hudRows = 1

var rowColors = []tcell.Color{
	tcell.ColorRed,
	tcell.ColorOrange,
	tcell.ColorYellow,
	tcell.ColorGreen,
	tcell.ColorDarkCyan,
	tcell.ColorBlue,
	tcell.ColorPurple,
}

var (
	styleHUD    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBanner = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	stylePaddle = tcell.StyleDefault.Foreground(tcell.ColorLightSteelBlue)
	styleBall   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Renderer draws snapshots scaled from field pixels to terminal cells.
type Renderer struct {
	screen tcell.Screen
	layout game.Layout
}

func NewRenderer(screen tcell.Screen, layout game.Layout) *Renderer {
	return &Renderer{screen: screen, layout: layout}
}

// grid maps field coordinates onto the cells below the HUD.
type grid struct {
	cols, rows int
	sx, sy     float64
}

func (r *Renderer) grid() (grid, bool) {
	w, h := r.screen.Size()
	if w < MinCols || h < MinRows {
		return grid{cols: w, rows: h}, false
	}
	rows := h - hudRows
	return grid{
		cols: w,
		rows: rows,
		sx:   float64(w) / r.layout.FieldWidth,
		sy:   float64(rows) / r.layout.FieldHeight,
	}, true
}

func (g grid) col(x float64) int { return clampInt(int(x*g.sx), 0, g.cols-1) }
func (g grid) row(y float64) int { return clampInt(int(y*g.sy), 0, g.rows-1) + hudRows }

func (r *Renderer) Render(snap game.Snapshot) {
	r.screen.Clear()
	g, ok := r.grid()
	if !ok {
		drawText(r.screen, 0, 0, styleHUD, "terminal too small")
		r.screen.Show()
		return
	}

	r.drawBlocks(g, snap.Blocks)
	r.drawPaddle(g, snap.PaddleX)
	r.drawBall(g, snap.Ball)
	r.drawHUD(g, snap)

	r.screen.Show()
}

func (r *Renderer) drawBlocks(g grid, blocks []game.Block) {
	for _, b := range blocks {
		if b.Destroyed {
			continue
		}
		x0, x1 := g.col(b.X), g.col(b.X+r.layout.BlockWidth)
		if x1 > x0 {
			x1-- // leave a gap column between neighbours
		}
		y := g.row(b.Y + r.layout.BlockHeight/2)
		color := rowColors[r.blockRow(b)%len(rowColors)]
		style := tcell.StyleDefault.Foreground(color)
		for x := x0; x <= x1; x++ {
			r.screen.SetContent(x, y, '█', nil, style)
		}
	}
}

// blockRow recovers a block's grid row from its position.
func (r *Renderer) blockRow(b game.Block) int {
	pitch := r.layout.BlockHeight + r.layout.BlockGap
	if pitch <= 0 {
		return 0
	}
	return max(int((b.Y-r.layout.TopMargin)/pitch+0.5), 0)
}

func (r *Renderer) drawPaddle(g grid, paddleX float64) {
	x0, x1 := g.col(paddleX), g.col(paddleX+r.layout.PaddleWidth)
	y := g.row(r.layout.PaddleY)
	for x := x0; x <= x1; x++ {
		r.screen.SetContent(x, y, '▀', nil, stylePaddle)
	}
}

func (r *Renderer) drawBall(g grid, b game.BallState) {
	if b.Y > r.layout.FieldHeight {
		return
	}
	half := r.layout.BallSize / 2
	r.screen.SetContent(g.col(b.X+half), g.row(b.Y+half), '●', nil, styleBall)
}

func (r *Renderer) drawHUD(g grid, snap game.Snapshot) {
	for x := 0; x < g.cols; x++ {
		r.screen.SetContent(x, 0, ' ', nil, styleBorder.Reverse(true))
	}
	drawText(r.screen, 1, 0, styleHUD.Reverse(true), fmt.Sprintf("SCORE %d", snap.Score))
	state := fmt.Sprintf("[%s]", snap.Phase)
	drawText(r.screen, g.cols-len(state)-1, 0, styleHUD.Reverse(true), state)

	if banner := Banner(snap); banner != "" {
		y := hudRows + g.rows/2
		x := (g.cols - len([]rune(banner))) / 2
		drawText(r.screen, max(x, 0), y, styleBanner, banner)
	}
}

// Banner is the centre message for phases that wait on the player.
func Banner(snap game.Snapshot) string {
	switch snap.Phase {
	case game.PhaseMenu:
		return " PALMBREAK  s: start  q: quit "
	case game.PhasePaused:
		return " PAUSED  p: resume  m: menu "
	case game.PhaseGameOver:
		return fmt.Sprintf(" GAME OVER  score %d  r: restart  m: menu ", snap.Score)
	case game.PhaseVictory:
		return fmt.Sprintf(" CLEARED  score %d  r: restart  m: menu ", snap.Score)
	case game.PhasePlaying:
		if !snap.Ball.Moving {
			return " space: launch "
		}
	}
	return ""
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, ch := range text {
		s.SetContent(x, y, ch, nil, style)
		x++
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
