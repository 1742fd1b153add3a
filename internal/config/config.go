// Package config provides YAML-based configuration loading for the slider
// platform: grid geometry, the tile picture, display and server settings.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// SliderConfig contains all configuration for the sliding puzzle.
type SliderConfig struct {
	Grid    GridConfig    `yaml:"grid"`
	Picture PictureConfig `yaml:"picture"`
	Display DisplayConfig `yaml:"display"`
	Clock   ClockConfig   `yaml:"clock"`
	Server  ServerConfig  `yaml:"server"`
}

// GridConfig is the board size. Fixed for the lifetime of one game.
type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// PictureConfig selects the text art shown on the tiles.
type PictureConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"` // Empty means the embedded picture
}

// DisplayConfig controls terminal rendering of a single tile.
type DisplayConfig struct {
	CellWidth   int  `yaml:"cell_width"`
	CellHeight  int  `yaml:"cell_height"`
	ShowNumbers bool `yaml:"show_numbers"`
}

// ClockConfig controls the elapsed-time ticker used by server sessions.
type ClockConfig struct {
	IntervalMS int `yaml:"interval_ms"`
}

// Interval returns the tick period, defaulting to one second.
func (c ClockConfig) Interval() time.Duration {
	if c.IntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// ServerConfig holds listen addresses for the SSH and web front ends.
type ServerConfig struct {
	SSHAddr            string `yaml:"ssh_addr"`
	WebAddr            string `yaml:"web_addr"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// IdleTimeout returns the SSH idle timeout.
func (s ServerConfig) IdleTimeout() time.Duration {
	if s.IdleTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

// Validate checks the values a game cannot start without.
func (c SliderConfig) Validate() error {
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 || c.Grid.Rows*c.Grid.Cols < 2 {
		return fmt.Errorf("%w: grid %dx%d needs at least two cells", ErrInvalidConfig, c.Grid.Rows, c.Grid.Cols)
	}
	if c.Display.CellWidth < 1 || c.Display.CellHeight < 1 {
		return fmt.Errorf("%w: cell size %dx%d must be positive", ErrInvalidConfig, c.Display.CellWidth, c.Display.CellHeight)
	}
	return nil
}
