package main

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/speaker"
	"github.com/vladimirvolkov/palmbreak/internal/sound"
)

// initAudio opens the speaker and returns a cue player bound to it.
func initAudio(volume float64) (*sound.Player, func(), error) {
	if err := speaker.Init(sound.SampleRate, sound.SampleRate.N(time.Second/10)); err != nil {
		return nil, nil, fmt.Errorf("speaker init: %w", err)
	}
	return sound.NewPlayer(speaker.Play, volume), speaker.Close, nil
}
