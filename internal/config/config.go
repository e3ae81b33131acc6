package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Audio   AudioConfig   `toml:"audio"`
	Loop    LoopConfig    `toml:"loop"`
	Scripts ScriptsConfig `toml:"scripts"`
	Scene   SceneConfig   `toml:"scene"`
	Logging LoggingConfig `toml:"logging"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type AudioConfig struct {
	MasterVolume float64 `toml:"master_volume"` // 0.0-1.0, clamped on load
}

type LoopConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	Workers  int           `toml:"workers"` // parallel systems per wave, min 1
}

type ScriptsConfig struct {
	Dir     string `toml:"dir"`
	Enabled bool   `toml:"enabled"`
}

type SceneConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML config at path over the defaults. Consumed at startup
// only; there is no hot reload.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Audio.MasterVolume < 0 {
		cfg.Audio.MasterVolume = 0
	}
	if cfg.Audio.MasterVolume > 1 {
		cfg.Audio.MasterVolume = 1
	}
	if cfg.Loop.Workers < 1 {
		cfg.Loop.Workers = 1
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1024,
			Height: 768,
			Title:  "WorldKeeper",
		},
		Audio: AudioConfig{
			MasterVolume: 0.7,
		},
		Loop: LoopConfig{
			TickRate: 16 * time.Millisecond,
			Workers:  4,
		},
		Scripts: ScriptsConfig{
			Dir:     "scripts",
			Enabled: true,
		},
		Scene: SceneConfig{
			Path: "data/scenes/main.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
