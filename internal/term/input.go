package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/vladimirvolkov/palmbreak/internal/game"
)

// Command is what one terminal event asks of the game.
type Command struct {
	Action  game.Action // zero when the event carries no action
	Hand    float64     // normalised hand x, valid when HasHand
	HasHand bool
	Quit    bool
}

// Input maps tcell events to commands. The mouse column stands in for the
// tracked hand; arrow keys nudge a virtual hand by KeyStep.
type Input struct {
	KeyStep float64
	hand    float64
}

func NewInput(keyStep float64) *Input {
	return &Input{KeyStep: keyStep, hand: 0.5}
}

// Hand is the current virtual hand position in [0,1].
func (in *Input) Hand() float64 { return in.hand }

// Handle translates ev. cols is the terminal width used to normalise mouse columns.
func (in *Input) Handle(ev tcell.Event, cols int) Command {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		if cols <= 0 {
			return Command{}
		}
		x, _ := ev.Position()
		in.hand = clamp01((float64(x) + 0.5) / float64(cols))
		return Command{Hand: in.hand, HasHand: true}

	case *tcell.EventKey:
		return in.key(ev)
	}
	return Command{}
}

func (in *Input) key(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return Command{Quit: true}
	case tcell.KeyEscape:
		return Command{Action: game.ActionMenu}
	case tcell.KeyEnter:
		return Command{Action: game.ActionStart}
	case tcell.KeyLeft:
		in.hand = clamp01(in.hand - in.KeyStep)
		return Command{Hand: in.hand, HasHand: true}
	case tcell.KeyRight:
		in.hand = clamp01(in.hand + in.KeyStep)
		return Command{Hand: in.hand, HasHand: true}
	case tcell.KeyRune:
	default:
		return Command{}
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return Command{Quit: true}
	case 's', 'S':
		return Command{Action: game.ActionStart}
	case 'p', 'P':
		return Command{Action: game.ActionPause}
	case ' ':
		return Command{Action: game.ActionLaunch}
	case 'r', 'R':
		return Command{Action: game.ActionRestart}
	case 'm', 'M':
		return Command{Action: game.ActionMenu}
	}
	return Command{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
