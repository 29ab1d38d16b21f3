package game

import "fmt"

type EventKind uint8

const (
	EventWall EventKind = iota + 1
	EventPaddle
	EventBlock
	EventLaunch
	EventVictory
	EventGameOver
)

var eventNames = map[EventKind]string{
	EventWall:     "wall",
	EventPaddle:   "paddle",
	EventBlock:    "block",
	EventLaunch:   "launch",
	EventVictory:  "victory",
	EventGameOver: "gameover",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event is something that happened during one frame. Block is the index of
// the destroyed block for EventBlock and -1 otherwise.
type Event struct {
	Kind  EventKind `json:"kind"`
	Block int       `json:"block"`
}

func newEvent(k EventKind) Event {
	return Event{Kind: k, Block: -1}
}
