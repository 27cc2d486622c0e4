package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/models"
	"github.com/san-kum/kinhost/internal/scalar"
)

const (
	DefaultLinks      = 2
	DefaultSweepFrom  = -3.14
	DefaultSweepTo    = 3.14
	DefaultSweepSteps = 120
)

type Config struct {
	Model      string      `yaml:"model"`
	Links      int         `yaml:"links"`
	Lengths    []float64   `yaml:"lengths"`
	Masses     []float64   `yaml:"masses"`
	InitAngles []float64   `yaml:"init_angles"`
	States     int         `yaml:"states"`
	Defaults   []float64   `yaml:"defaults"`
	Sweep      SweepConfig `yaml:"sweep"`
}

// SweepConfig describes the configuration sweep the CLI drives: the
// first joint angle runs from From to To in Steps steps.
type SweepConfig struct {
	From  float64 `yaml:"from"`
	To    float64 `yaml:"to"`
	Steps int     `yaml:"steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: "chain",
		Links: DefaultLinks,
		Sweep: SweepConfig{
			From:  DefaultSweepFrom,
			To:    DefaultSweepTo,
			Steps: DefaultSweepSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Model {
	case "chain":
		if c.Links <= 0 {
			return fmt.Errorf("config: links must be positive, got %d", c.Links)
		}
		for _, field := range [][]float64{c.Lengths, c.Masses, c.InitAngles} {
			if len(field) != 0 && len(field) != c.Links {
				return fmt.Errorf("config: per-link fields must have %d entries", c.Links)
			}
		}
	case "register":
		if c.States <= 0 {
			return fmt.Errorf("config: states must be positive, got %d", c.States)
		}
		if len(c.Defaults) != 0 && len(c.Defaults) != c.States {
			return fmt.Errorf("config: defaults must have %d entries", c.States)
		}
	default:
		return fmt.Errorf("config: unknown model: %s", c.Model)
	}
	if c.Sweep.Steps < 0 {
		return fmt.Errorf("config: sweep steps must be non-negative, got %d", c.Sweep.Steps)
	}
	return nil
}

// BuildHost constructs and finalizes a real-scalar host from the config.
func BuildHost(cfg *Config) (*host.Host[scalar.Real], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Model {
	case "chain":
		m, err := models.NewChain[scalar.Real](cfg.Links)
		if err != nil {
			return nil, err
		}
		for i := 0; i < cfg.Links; i++ {
			length, mass := 1.0, 1.0
			if len(cfg.Lengths) > 0 {
				length = cfg.Lengths[i]
			}
			if len(cfg.Masses) > 0 {
				mass = cfg.Masses[i]
			}
			if err := m.SetLink(i, length, mass); err != nil {
				return nil, err
			}
		}
		if len(cfg.InitAngles) > 0 {
			if err := m.SetInitAngles(cfg.InitAngles); err != nil {
				return nil, err
			}
		}
		h, err := host.New[scalar.Real](m, false)
		if err != nil {
			return nil, err
		}
		if err := h.Finalize(); err != nil {
			return nil, err
		}
		return h, nil

	case "register":
		m, err := models.NewRegister[scalar.Real](cfg.States)
		if err != nil {
			return nil, err
		}
		if len(cfg.Defaults) > 0 {
			if err := m.SetDefaults(cfg.Defaults); err != nil {
				return nil, err
			}
		}
		h, err := host.New[scalar.Real](m, true)
		if err != nil {
			return nil, err
		}
		if err := h.Finalize(); err != nil {
			return nil, err
		}
		return h, nil

	default:
		return nil, fmt.Errorf("config: unknown model: %s", cfg.Model)
	}
}
