package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/worldkeeper/engine/internal/assets"
	"github.com/worldkeeper/engine/internal/config"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/data"
	"github.com/worldkeeper/engine/internal/game"
	"github.com/worldkeeper/engine/internal/host"
	"github.com/worldkeeper/engine/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "config/engine.toml", "path to the TOML config")
	profiling := flag.Bool("profile", false, "write a CPU profile next to the binary")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Defaults()
	} else if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if *profiling {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	// 3. Load the startup scene
	var scene *data.Scene
	scene, err = data.LoadScene(cfg.Scene.Path)
	if err != nil {
		log.Warn("scene unavailable, starting empty", zap.Error(err))
		scene = nil
	} else {
		log.Info("scene loaded",
			zap.String("name", scene.Name),
			zap.Int("entities", scene.Count()))
	}

	// 4. Load the Lua rule pack
	var rules *scripting.Engine
	if cfg.Scripts.Enabled {
		rules, err = scripting.NewEngine(cfg.Scripts.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer rules.Close()
		log.Info("lua rules loaded", zap.String("dir", cfg.Scripts.Dir))
	}

	// 5. Kick off asset loads for every sprite the scene names. Loads run
	// out of band; the run starts immediately and the table is polled.
	assetTable := assets.NewTable()
	if scene != nil {
		for _, name := range sceneSprites(scene) {
			path := filepath.Join("assets", name+".png")
			assetTable.Load(name, func() ([]byte, error) {
				return os.ReadFile(path)
			})
		}
	}

	// 6. Build the frame pipeline
	input := &host.ScriptedInput{} // real engine input binds here
	g, err := game.New(game.Options{
		Log:     log,
		Workers: cfg.Loop.Workers,
		Input:   input,
		Scene:   scene,
		Rules:   rules,
	})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	if err := resource.Register(g.Resources, cfg); err != nil {
		return fmt.Errorf("register config: %w", err)
	}
	if err := resource.Register(g.Resources, assetTable); err != nil {
		return fmt.Errorf("register assets: %w", err)
	}

	log.Info("worldkeeper starting",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Float64("volume", cfg.Audio.MasterVolume),
		zap.Duration("tick", cfg.Loop.TickRate),
		zap.Int("workers", cfg.Loop.Workers),
		zap.Strings("phases", g.Schedule.Phases()))

	// 7. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	last := time.Now()
	assetsReady := assetTable.Pending() == 0
	for {
		select {
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			g.Tick(delta)
			if !assetsReady && assetTable.Pending() == 0 {
				assetsReady = true
				log.Info("assets ready")
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// sceneSprites returns the distinct sprite names a scene references.
func sceneSprites(scene *data.Scene) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range scene.Entities {
		if e.Sprite != "" && !seen[e.Sprite] {
			seen[e.Sprite] = true
			names = append(names, e.Sprite)
		}
	}
	return names
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
