// Command terminal plays palmbreak in a terminal. The mouse column (or the
// arrow keys) stands in for the tracked hand; an external pose estimator can
// feed real hand positions as JSON lines with -pose.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/vladimirvolkov/palmbreak/internal/config"
	"github.com/vladimirvolkov/palmbreak/internal/game"
	"github.com/vladimirvolkov/palmbreak/internal/pose"
	"github.com/vladimirvolkov/palmbreak/internal/sound"
	"github.com/vladimirvolkov/palmbreak/internal/term"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	logPath := flag.String("log", "", "append logs to this file (default: discard)")
	mute := flag.Bool("mute", false, "disable sound")
	poseFeed := flag.String("pose", "", `JSON-lines hand feed ({"x":0.42} per line): a file path or - for stdin`)
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	defer screen.Fini()

	defer term.RestoreOnPanic(screen, os.Stderr, os.Exit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cues *sound.Player
	if cfg.Audio.Enabled && !*mute {
		if p, closeAudio, err := initAudio(cfg.Audio.Volume); err != nil {
			// Non-fatal, game can run without sound
			log.Printf("Audio initialization failed: %v", err)
		} else {
			cues = p
			defer closeAudio()
		}
	}

	renderer := term.NewRenderer(screen, cfg.Game.Layout())
	runner := game.NewRunner(game.NewSession(cfg.Game), game.RenderFunc(func(snap game.Snapshot) {
		// Frames are drawn on the runner goroutine
		defer term.RestoreOnPanic(screen, os.Stderr, os.Exit)
		renderer.Render(snap)
		cues.Play(snap.Events)
	}))
	runner.Start(ctx)
	defer runner.Stop()

	if *poseFeed != "" {
		go readPoseFeed(ctx, *poseFeed, pose.Mapper{FieldWidth: cfg.Game.FieldWidth, Mirror: cfg.Input.Mirror}, runner)
	}

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalised
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	input := term.NewInput(cfg.Input.KeyStep)
	mouse := pose.Mapper{FieldWidth: cfg.Game.FieldWidth}
	for {
		select {
		case <-ctx.Done():
			return
		case <-runner.Done():
			return
		case ev := <-eventChan:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				runner.Redraw()
				continue
			}
			cols, _ := screen.Size()
			cmd := input.Handle(ev, cols)
			if cmd.Quit {
				return
			}
			if cmd.Action != 0 {
				runner.Do(cmd.Action)
			}
			if cmd.HasHand {
				if x, ok := mouse.ToField(pose.At(cmd.Hand)); ok {
					runner.PushSample(x)
				}
			}
		}
	}
}

func readPoseFeed(ctx context.Context, path string, m pose.Mapper, runner *game.Runner) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("pose feed: %v", err)
			return
		}
		defer f.Close()
		r = f
	}
	if err := pose.ReadFeed(ctx, r, m, runner.PushSample); err != nil && ctx.Err() == nil {
		log.Printf("pose feed stopped: %v", err)
		return
	}
	log.Printf("pose feed ended")
}
