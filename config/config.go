// Package config loads the settings shared by the command line tools from
// YAML or TOML files and builds the loggers, caches and physics backends
// they describe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jakecoffman/cp"
	"github.com/solarlune/resolv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/tiledmap/cache"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/spawn"
	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/tmx"
)

// ErrUnknownFormat is returned by Load for file extensions other than
// .yaml, .yml and .toml.
var ErrUnknownFormat = errors.New("config: unknown file format")

type Config struct {
	Map     MapConfig     `yaml:"map" toml:"map"`
	World   WorldConfig   `yaml:"world" toml:"world"`
	Physics PhysicsConfig `yaml:"physics" toml:"physics"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
	Assets  AssetsConfig  `yaml:"assets" toml:"assets"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

type MapConfig struct {
	Anchor       string  `yaml:"anchor" toml:"anchor"`
	LayerZOffset float64 `yaml:"layer_z_offset" toml:"layer_z_offset"`
}

type WorldConfig struct {
	Anchor string `yaml:"anchor" toml:"anchor"`
	// Window is the chunking window. nil spawns every map of a world.
	Window *Size `yaml:"window" toml:"window"`
}

type Size struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

type PhysicsConfig struct {
	// Backend is chipmunk, resolv or none.
	Backend         string     `yaml:"backend" toml:"backend"`
	Strategy        string     `yaml:"strategy" toml:"strategy"`
	ObjectColliders NameFilter `yaml:"object_colliders" toml:"object_colliders"`
	TileColliders   NameFilter `yaml:"tile_colliders" toml:"tile_colliders"`
	OpenLines       bool       `yaml:"open_lines" toml:"open_lines"`
	Friction        float64    `yaml:"friction" toml:"friction"`
	Radius          float64    `yaml:"radius" toml:"radius"`
	// Tags are added to every resolv object.
	Tags []string `yaml:"tags" toml:"tags"`
	// SpaceSize and CellSize size a fresh resolv.Space.
	SpaceSize Size    `yaml:"space_size" toml:"space_size"`
	CellSize  float64 `yaml:"cell_size" toml:"cell_size"`
}

type CacheConfig struct {
	// Kind is memory or ristretto.
	Kind        string `yaml:"kind" toml:"kind"`
	MaxCost     int64  `yaml:"max_cost" toml:"max_cost"`
	NumCounters int64  `yaml:"num_counters" toml:"num_counters"`
}

type AssetsConfig struct {
	Root     string        `yaml:"root" toml:"root"`
	Watch    bool          `yaml:"watch" toml:"watch"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	// File also writes JSON logs to a size-rotated file.
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
}

func Default() *Config {
	return &Config{
		Map: MapConfig{
			LayerZOffset: 100,
		},
		Physics: PhysicsConfig{
			Backend:         "chipmunk",
			Strategy:        "triangles",
			ObjectColliders: MatchAll(),
			TileColliders:   MatchAll(),
			Friction:        1,
			SpaceSize:       Size{Width: 4096, Height: 4096},
			CellSize:        16,
		},
		Cache: CacheConfig{
			Kind: "memory",
		},
		Assets: AssetsConfig{
			Root:     ".",
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path over Default. The format follows the file extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := tiled.ParseAnchor(c.Map.Anchor); err != nil {
		return fmt.Errorf("map.anchor: %w", err)
	}
	if _, err := tiled.ParseAnchor(c.World.Anchor); err != nil {
		return fmt.Errorf("world.anchor: %w", err)
	}
	if _, err := physics.ParseStrategy(c.Physics.Strategy); err != nil {
		return fmt.Errorf("physics.strategy: %w", err)
	}
	switch strings.ToLower(c.Physics.Backend) {
	case "", "none", "chipmunk", "resolv":
	default:
		return fmt.Errorf("physics.backend: unknown backend %q", c.Physics.Backend)
	}
	switch strings.ToLower(c.Cache.Kind) {
	case "", "memory", "ristretto":
	default:
		return fmt.Errorf("cache.kind: unknown cache %q", c.Cache.Kind)
	}
	if w := c.World.Window; w != nil && (w.Width < 0 || w.Height < 0) {
		return fmt.Errorf("world.window: negative size %gx%g", w.Width, w.Height)
	}
	return nil
}

// Logger builds a zap logger. json selects the production encoder, anything
// else a colored console encoder. Unknown levels fall back to info.
func (c LoggingConfig) Logger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if c.Format == "json" {
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

	logger, err := zapCfg.Build()
	if err != nil || c.File == "" {
		return logger, err
	}
	file := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
		}),
		zapCfg.Level,
	)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, file)
	})), nil
}

// NewCache builds the resource cache shared by every decode.
func (c CacheConfig) NewCache() (tmx.ResourceCache, error) {
	switch strings.ToLower(c.Kind) {
	case "", "memory":
		return cache.NewMemory(), nil
	case "ristretto":
		rc := cache.DefaultRistrettoConfig()
		if c.MaxCost > 0 {
			rc.MaxCost = c.MaxCost
		}
		if c.NumCounters > 0 {
			rc.NumCounters = c.NumCounters
		}
		r, err := cache.NewRistretto(rc)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("config: unknown cache %q", c.Kind)
}

// NewBackend builds the physics backend with a fresh space.
func (c PhysicsConfig) NewBackend(log *zap.Logger) (physics.Backend, error) {
	strategy, err := physics.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(c.Backend) {
	case "", "none":
		return physics.Noop{}, nil
	case "chipmunk":
		return physics.NewChipmunk(cp.NewSpace(), physics.ChipmunkOptions{
			Strategy: strategy,
			Friction: c.Friction,
			Radius:   c.Radius,
			Logger:   log,
		}), nil
	case "resolv":
		cell := int(c.CellSize)
		if cell <= 0 {
			cell = 16
		}
		w, h := int(c.SpaceSize.Width), int(c.SpaceSize.Height)
		if w <= 0 || h <= 0 {
			w, h = 4096, 4096
		}
		return physics.NewResolv(resolv.NewSpace(w, h, cell, cell), physics.ResolvOptions{
			Strategy: strategy,
			Tags:     c.Tags,
			Logger:   log,
		}), nil
	}
	return nil, fmt.Errorf("config: unknown physics backend %q", c.Backend)
}

// SpawnConfig converts the map and physics sections to a spawn.Config.
func (c *Config) SpawnConfig(registry *tiled.PropertyRegistry) (spawn.Config, error) {
	anchor, err := tiled.ParseAnchor(c.Map.Anchor)
	if err != nil {
		return spawn.Config{}, err
	}
	return spawn.Config{
		MapAnchor:       anchor,
		LayerZOffset:    c.Map.LayerZOffset,
		ObjectColliders: c.Physics.ObjectColliders,
		TileColliders:   c.Physics.TileColliders,
		OpenLines:       c.Physics.OpenLines,
		Registry:        registry,
	}, nil
}

// WorldAnchor returns the parsed world anchor and chunking window.
func (c WorldConfig) WorldAnchor() (tiled.Anchor, *geom.Vec2, error) {
	anchor, err := tiled.ParseAnchor(c.Anchor)
	if err != nil {
		return tiled.AnchorNone, nil, err
	}
	if c.Window == nil {
		return anchor, nil, nil
	}
	w := geom.V(c.Window.Width, c.Window.Height)
	return anchor, &w, nil
}
