// Package config loads the session settings from YAML.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/tilecore/internal/core/observability/log"
)

type Config struct {
	Game      GameConfig      `json:"game" yaml:"game"`
	Scene     SceneConfig     `json:"scene" yaml:"scene"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Seed      string          `json:"seed" yaml:"seed"`
	Save      SaveConfig      `json:"save" yaml:"save"`
	Inspector InspectorConfig `json:"inspector" yaml:"inspector"`
}

type GameConfig struct {
	MovementDuration time.Duration `json:"movement_duration" yaml:"movement_duration"`
	FrameInterval    time.Duration `json:"frame_interval" yaml:"frame_interval"`
	CameraZoom       float64       `json:"camera_zoom" yaml:"camera_zoom"`
	MapWidth         int           `json:"map_width" yaml:"map_width"`
	MapHeight        int           `json:"map_height" yaml:"map_height"`
}

type SceneConfig struct {
	Default      string        `json:"default" yaml:"default"`
	SettleDelay  time.Duration `json:"settle_delay" yaml:"settle_delay"`
	ReadyTimeout time.Duration `json:"ready_timeout" yaml:"ready_timeout"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

type SaveConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	AppName string `json:"app_name" yaml:"app_name"`
}

type InspectorConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			MovementDuration: 250 * time.Millisecond,
			FrameInterval:    16 * time.Millisecond,
			CameraZoom:       64,
			MapWidth:         1,
			MapHeight:        1,
		},
		Scene: SceneConfig{
			SettleDelay:  100 * time.Millisecond,
			ReadyTimeout: time.Second,
		},
		Log:  LogConfig{Level: "info"},
		Seed: "?",
		Save: SaveConfig{AppName: "tilecore"},
		Inspector: InspectorConfig{
			Addr: "127.0.0.1:8089",
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadYAML(bytes.NewReader(raw))
}

// LoadYAML decodes r on top of Default and validates the result. Unknown
// keys are rejected. An empty document yields the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Game.MovementDuration < 0:
		return fmt.Errorf("%w: game.movement_duration must not be negative", ErrInvalidConfig)
	case c.Game.FrameInterval <= 0:
		return fmt.Errorf("%w: game.frame_interval must be positive", ErrInvalidConfig)
	case c.Game.CameraZoom <= 0:
		return fmt.Errorf("%w: game.camera_zoom must be positive", ErrInvalidConfig)
	case c.Game.MapWidth < 0 || c.Game.MapHeight < 0:
		return fmt.Errorf("%w: map size must not be negative", ErrInvalidConfig)
	case c.Scene.SettleDelay < 0:
		return fmt.Errorf("%w: scene.settle_delay must not be negative", ErrInvalidConfig)
	case c.Scene.ReadyTimeout <= 0:
		return fmt.Errorf("%w: scene.ready_timeout must be positive", ErrInvalidConfig)
	case c.Save.Enabled && c.Save.AppName == "":
		return fmt.Errorf("%w: save.app_name is required when saving is enabled", ErrInvalidConfig)
	case c.Inspector.Enabled && c.Inspector.Addr == "":
		return fmt.Errorf("%w: inspector.addr is required when the inspector is enabled", ErrInvalidConfig)
	}
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// LogLevel is the parsed log.level, info when unknown.
func (c *Config) LogLevel() log.Level {
	level, ok := log.ParseLevel(c.Log.Level)
	if !ok {
		return log.LevelInfo
	}
	return level
}
