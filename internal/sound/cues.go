// Package sound turns game events into short synthesised cues.
package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/vladimirvolkov/palmbreak/internal/game"
)

// SampleRate is shared by every cue and by the speaker.
const SampleRate = beep.SampleRate(44100)

// Tone is one sine blip.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// Cue is the sequence of tones played for an event kind.
type Cue []Tone

// Cues maps events to sounds. Wall and paddle share a pitch family so the
// rally stays readable; victory and game over are short melodies.
var Cues = map[game.EventKind]Cue{
	game.EventWall:     {{Freq: 440, Duration: 30 * time.Millisecond}},
	game.EventPaddle:   {{Freq: 330, Duration: 45 * time.Millisecond}},
	game.EventBlock:    {{Freq: 880, Duration: 50 * time.Millisecond}},
	game.EventLaunch:   {{Freq: 523, Duration: 40 * time.Millisecond}, {Freq: 784, Duration: 60 * time.Millisecond}},
	game.EventVictory:  {{Freq: 523, Duration: 120 * time.Millisecond}, {Freq: 659, Duration: 120 * time.Millisecond}, {Freq: 784, Duration: 240 * time.Millisecond}},
	game.EventGameOver: {{Freq: 392, Duration: 150 * time.Millisecond}, {Freq: 262, Duration: 300 * time.Millisecond}},
}

// Samples is the cue length at SampleRate.
func (c Cue) Samples() int {
	n := 0
	for _, t := range c {
		n += SampleRate.N(t.Duration)
	}
	return n
}

// Streamer renders the cue at volume in [0,1]. It returns nil for an empty
// cue or when a tone cannot be generated.
func (c Cue) Streamer(volume float64) beep.Streamer {
	if len(c) == 0 {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(c))
	for _, t := range c {
		sine, err := generators.SineTone(SampleRate, t.Freq)
		if err != nil {
			return nil
		}
		parts = append(parts, beep.Take(SampleRate.N(t.Duration), sine))
	}
	return newVolume(beep.Seq(parts...), volume)
}

// newVolume maps a linear volume onto beep's log scale; zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Output plays a streamer, typically speaker.Play.
type Output func(...beep.Streamer)

// Player plays the cue for each event in a snapshot. A nil Player is silent.
type Player struct {
	out    Output
	volume float64
}

func NewPlayer(out Output, volume float64) *Player {
	return &Player{out: out, volume: volume}
}

// Play queues cues for events. Several block hits in one frame collapse into
// one cue of each kind.
func (p *Player) Play(events []game.Event) int {
	if p == nil || p.out == nil {
		return 0
	}
	seen := make(map[game.EventKind]bool, len(events))
	played := 0
	for _, ev := range events {
		if seen[ev.Kind] {
			continue
		}
		seen[ev.Kind] = true
		if s := Cues[ev.Kind].Streamer(p.volume); s != nil {
			p.out(s)
			played++
		}
	}
	return played
}
