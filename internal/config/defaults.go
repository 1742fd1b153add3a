package config

import (
	_ "embed"
)

//go:embed defaults/slider.yaml
var defaultSliderYAML []byte

//go:embed defaults/picture.txt
var defaultPicture string

// DefaultSliderConfig returns the built-in configuration.
func DefaultSliderConfig() SliderConfig {
	return SliderConfig{
		Grid: GridConfig{
			Rows: 3,
			Cols: 3,
		},
		Picture: PictureConfig{
			Name: "tom",
		},
		Display: DisplayConfig{
			CellWidth:  9,
			CellHeight: 4,
		},
		Clock: ClockConfig{
			IntervalMS: 1000,
		},
		Server: ServerConfig{
			SSHAddr:            ":23234",
			WebAddr:            ":8080",
			IdleTimeoutMinutes: 30,
		},
	}
}
