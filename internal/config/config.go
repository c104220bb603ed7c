// Package config loads and validates the pipeline configuration: the class
// catalog, split ratios, detector backend defaults, and per-category
// generation prompts.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DatasetConfig configures dataset generation.
type DatasetConfig struct {
	Classes    []string `toml:"classes"`
	TrainRatio float64  `toml:"train_ratio"`
	ValRatio   float64  `toml:"val_ratio"`
}

// DetectorConfig selects and configures the detection backend.
type DetectorConfig struct {
	Backend string `toml:"backend"`
	Model   string `toml:"model"`
	URL     string `toml:"url"`
}

// GenerationConfig configures synthetic image generation.
type GenerationConfig struct {
	Size    string            `toml:"size"`
	Quality string            `toml:"quality"`
	Prompts map[string]string `toml:"prompts"`
}

// Config is the full pipeline configuration.
type Config struct {
	Dataset    DatasetConfig    `toml:"dataset"`
	Detector   DetectorConfig   `toml:"detector"`
	Generation GenerationConfig `toml:"generation"`
}

// Default returns the built-in configuration used when no config file is
// given.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Classes:    []string{"flip-flops", "helmet", "glove", "boots"},
			TrainRatio: 0.70,
			ValRatio:   0.15,
		},
		Detector: DetectorConfig{
			Backend: "ollama",
			Model:   "paligemma2",
			URL:     "http://localhost:11434",
		},
		Generation: GenerationConfig{
			Size:    "1024x1024",
			Quality: "standard",
			Prompts: map[string]string{
				"flip-flops": "A person standing on a concrete sidewalk wearing red flip-flops, legs visible from mid-calf down, outdoors in natural late-afternoon light.",
				"boots":      "A person standing on a smooth concrete surface wearing matte navy slip-on work boots with off-white soles, olive green pants, bright daytime light.",
				"helmet-glove": "A cheerful man in a suburban front yard wearing a matte white bicycle helmet and a solid black glove on his raised right hand, waving at the camera in warm sunny light.",
			},
		},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors that must abort a run before
// any processing starts.
func (c *Config) Validate() error {
	if len(c.Dataset.Classes) == 0 {
		return fmt.Errorf("dataset.classes cannot be empty")
	}
	seen := make(map[string]bool, len(c.Dataset.Classes))
	for _, name := range c.Dataset.Classes {
		if name == "" {
			return fmt.Errorf("dataset.classes contains an empty name")
		}
		if seen[name] {
			return fmt.Errorf("dataset.classes contains duplicate %q", name)
		}
		seen[name] = true
	}

	if c.Dataset.TrainRatio <= 0 || c.Dataset.TrainRatio >= 1 {
		return fmt.Errorf("dataset.train_ratio must be in (0,1), got %v", c.Dataset.TrainRatio)
	}
	if c.Dataset.ValRatio <= 0 || c.Dataset.ValRatio >= 1 {
		return fmt.Errorf("dataset.val_ratio must be in (0,1), got %v", c.Dataset.ValRatio)
	}
	if c.Dataset.TrainRatio+c.Dataset.ValRatio > 1 {
		return fmt.Errorf("dataset.train_ratio + dataset.val_ratio must not exceed 1")
	}

	switch c.Detector.Backend {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("detector.backend must be \"ollama\" or \"gemini\", got %q", c.Detector.Backend)
	}
	if c.Detector.Model == "" {
		return fmt.Errorf("detector.model cannot be empty")
	}

	return nil
}
