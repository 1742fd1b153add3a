package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSlider loads the slider configuration.
// Search order: customPath -> ~/.slider/configs/slider.yaml -> ./configs/slider.yaml -> embedded default
//
// Files are decoded over the defaults, so a file may set only the keys it cares about.
func LoadSlider(customPath string) (SliderConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return SliderConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseSlider(data)
		if err != nil {
			return SliderConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory, then the local configs directory
	for _, path := range []string{userConfigPath("slider.yaml"), filepath.Join("configs", "slider.yaml")} {
		if path == "" {
			continue
		}
		if data, err := os.ReadFile(path); err == nil {
			if cfg, err := parseSlider(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Use embedded default YAML
	if cfg, err := parseSlider(defaultSliderYAML); err == nil {
		return cfg, nil
	}
	return DefaultSliderConfig(), nil
}

func parseSlider(data []byte) (SliderConfig, error) {
	cfg := DefaultSliderConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SliderConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return SliderConfig{}, err
	}
	return cfg, nil
}

// LoadPicture returns the text art lines for the tiles.
// An empty path selects the embedded picture.
func LoadPicture(path string) ([]string, error) {
	text := defaultPicture
	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read picture %s: %w", path, err)
		}
		text = string(data)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil, fmt.Errorf("%w: picture %q is empty", ErrInvalidConfig, path)
	}
	return strings.Split(text, "\n"), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".slider", "configs", filename)
}

// DataDir returns ~/.slider, the home of the database, host key and screenshots.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slider"
	}
	return filepath.Join(home, ".slider")
}
