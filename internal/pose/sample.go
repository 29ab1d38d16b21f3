// Package pose is the boundary with the external hand-tracking source. It
// turns optional normalised landmark readings into field coordinates.
package pose

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
)

// Sample is one reading for the tracked right hand. X is the landmark's
// normalised horizontal position, nil when no hand was detected that frame.
type Sample struct {
	X *float64 `json:"x"`
}

// At is a convenience constructor for a detected hand.
func At(x float64) Sample {
	return Sample{X: &x}
}

// Mapper scales normalised readings to field pixels. Webcam images are
// usually mirrored, so Mirror flips the axis to make the paddle follow the
// hand the way the player sees it.
type Mapper struct {
	FieldWidth float64
	Mirror     bool
}

// ToField returns the field x for s, or false when s carries no hand.
func (m Mapper) ToField(s Sample) (float64, bool) {
	if s.X == nil {
		return 0, false
	}
	x := *s.X
	if x != x { // NaN
		return 0, false
	}
	if x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}
	if m.Mirror {
		x = 1 - x
	}
	return x * m.FieldWidth, true
}

// ReadFeed reads one JSON Sample per line from r and calls push with the
// field x of every detected hand. Blank lines and frames without a hand are
// skipped; malformed lines are logged and skipped. It returns when r is
// exhausted, on a read error, or once ctx is done.
func ReadFeed(ctx context.Context, r io.Reader, m Mapper, push func(float64)) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var s Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			log.Printf("pose feed: line %d: %v", line, err)
			continue
		}
		if x, ok := m.ToField(s); ok {
			push(x)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("pose feed: %w", err)
	}
	return nil
}
