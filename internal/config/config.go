// Package config loads the board's TOML settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

// Store selects where drawings are kept.
type Store struct {
	// Address of a drawing server ("host:port"). Empty means in-process.
	Address string `toml:"address"`
	// Listen is the server's bind address in -serve mode.
	Listen string `toml:"listen"`
	// Directory holds one file per user; empty keeps drawings in memory.
	Directory string        `toml:"directory"`
	Discover  bool          `toml:"discover"`
	Timeout   time.Duration `toml:"timeout"`
}

type Canvas struct {
	Width        int         `toml:"width"`
	Height       int         `toml:"height"`
	Background   state.Color `toml:"background"`
	HistoryLimit int         `toml:"history_limit"`
}

type Tools struct {
	Color    state.Color `toml:"color"`
	Width    float32     `toml:"width"`
	FontSize float64     `toml:"font_size"`
	Coalesce float32     `toml:"coalesce"`
}

type Config struct {
	UserID string `toml:"user_id"`
	Store  Store  `toml:"store"`
	Canvas Canvas `toml:"canvas"`
	Tools  Tools  `toml:"tools"`
}

func DefaultConfig() *Config {
	return &Config{
		UserID: "local",
		Store: Store{
			Listen:  ":7777",
			Timeout: 5 * time.Second,
		},
		Canvas: Canvas{
			Width:      1200,
			Height:     800,
			Background: "#ffffff",
		},
		Tools: Tools{
			Color:    tool.DefaultStyle.Color,
			Width:    tool.DefaultStyle.Width,
			FontSize: state.DefaultFontSize,
		},
	}
}

// DefaultPath is ~/.config/sketchboard/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sketchboard", "config.toml")
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return DefaultConfig(), fmt.Errorf("decode %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces out-of-range values with their defaults.
func (c *Config) Validate() {
	defaults := DefaultConfig()

	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		c.UserID = defaults.UserID
	}
	if c.Store.Timeout <= 0 {
		c.Store.Timeout = defaults.Store.Timeout
	}
	if c.Store.Listen == "" {
		c.Store.Listen = defaults.Store.Listen
	}
	if strings.Contains(c.Store.Directory, "..") {
		c.Store.Directory = defaults.Store.Directory
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		c.Canvas.Width, c.Canvas.Height = defaults.Canvas.Width, defaults.Canvas.Height
	}
	if _, err := c.Canvas.Background.Parse(); err != nil {
		c.Canvas.Background = defaults.Canvas.Background
	}
	if c.Canvas.HistoryLimit < 0 {
		c.Canvas.HistoryLimit = 0
	}

	if _, err := c.Tools.Color.Parse(); err != nil {
		c.Tools.Color = defaults.Tools.Color
	}
	if c.Tools.Width <= 0 || c.Tools.Width > 100 {
		c.Tools.Width = defaults.Tools.Width
	}
	if c.Tools.FontSize < 6 || c.Tools.FontSize > 200 {
		c.Tools.FontSize = defaults.Tools.FontSize
	}
	if c.Tools.Coalesce < 0 {
		c.Tools.Coalesce = 0
	}
}

// Style is the initial pen for new elements.
func (c *Config) Style() tool.Style {
	return tool.Style{Color: c.Tools.Color, Width: c.Tools.Width, Coalesce: c.Tools.Coalesce}
}

// Save writes the config as TOML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
