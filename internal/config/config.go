// Package config loads palmbreak settings: built-in defaults, then an
// optional TOML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vladimirvolkov/palmbreak/internal/game"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Server struct {
	Port           string   `toml:"port"`
	StaticDir      string   `toml:"static_dir"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxSessions    int      `toml:"max_sessions"`
	MaxConnsPerIP  int      `toml:"max_conns_per_ip"`
	MsgRate        int      `toml:"msg_rate"` // messages per second per IP
}

type Input struct {
	// Mirror flips normalised hand x, for selfie-view webcams.
	Mirror bool `toml:"mirror"`
	// KeyStep is how far one arrow key press moves the virtual hand, as a
	// fraction of the field width.
	KeyStep float64 `toml:"key_step"`
}

type Audio struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"` // 0..1
}

type Config struct {
	Server Server      `toml:"server"`
	Game   game.Config `toml:"game"`
	Input  Input       `toml:"input"`
	Audio  Audio       `toml:"audio"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:          "8080",
			StaticDir:     "../client/dist",
			MaxSessions:   100,
			MaxConnsPerIP: 4,
			MsgRate:       120,
		},
		Game: game.DefaultConfig(),
		Input: Input{
			Mirror:  true,
			KeyStep: 0.05,
		},
		Audio: Audio{
			Enabled: true,
			Volume:  0.5,
		},
	}
}

// Load builds the effective configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers the deployment environment over the file settings.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("STATIC_DIR"); ok && v != "" {
		c.Server.StaticDir = v
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v, ok := lookup("PALMBREAK_TICK_RATE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PALMBREAK_TICK_RATE=%q: %v", ErrInvalid, v, err)
		}
		c.Game.TickRate = n
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("%w: server.port %q is not a number", ErrInvalid, c.Server.Port)
	}
	if c.Server.MaxConnsPerIP < 1 || c.Server.MsgRate < 1 {
		return fmt.Errorf("%w: server limits must be positive", ErrInvalid)
	}
	if c.Input.KeyStep <= 0 || c.Input.KeyStep > 1 {
		return fmt.Errorf("%w: input.key_step %g outside (0,1]", ErrInvalid, c.Input.KeyStep)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume %g outside [0,1]", ErrInvalid, c.Audio.Volume)
	}
	return nil
}

// Write encodes c as TOML, for -dump-config.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
