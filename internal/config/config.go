package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Store struct {
	Kind       string `yaml:"kind"` // "memory" | "valkey"
	ValkeyAddr string `yaml:"valkey_addr"`
	ValkeyKey  string `yaml:"valkey_key"`
}

type Config struct {
	Addr       string  `yaml:"addr"`
	LogLevel   string  `yaml:"log_level"`
	Driver     string  `yaml:"driver"` // "sim" | "spi" | "console"
	LedCount   int     `yaml:"led_count"`
	ColorOrder string  `yaml:"color_order"`
	WhiteCap   float64 `yaml:"white_cap"`
	LimitAmps  float64 `yaml:"limit_amps"`

	SPI   SPI   `yaml:"spi,omitempty"`
	Store Store `yaml:"store"`

	SaveWindowMs  int `yaml:"save_window_ms"`
	LiveTimeoutMs int `yaml:"live_timeout_ms"`
}

func Default() Config {
	return Config{
		Addr:          ":5000",
		LogLevel:      "info",
		Driver:        "sim",
		LedCount:      40,
		ColorOrder:    "GRB",
		Store:         Store{Kind: "memory", ValkeyKey: "ledstudio:scenes"},
		SaveWindowMs:  60000,
		LiveTimeoutMs: 500,
	}
}

// Load reads the yaml file at path over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.Merge(path); err != nil {
		return nil, err
	}
	return &c, nil
}

// Merge reads the yaml file at path over c. Keys the file does not set
// keep their current value.
func (c *Config) Merge(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// LoadEnv reads .env style files into the process environment. Missing
// files are skipped; variables already set are kept.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides c from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("LEDSTUDIO_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("LEDSTUDIO_DRIVER"); ok && v != "" {
		c.Driver = v
	}
	if v, ok := lookup("LEDSTUDIO_LED_COUNT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("LEDSTUDIO_LED_COUNT: bad count %q", v)
		}
		c.LedCount = n
	}
	if v, ok := lookup("LEDSTUDIO_STORE"); ok && v != "" {
		c.Store.Kind = v
	}
	if v, ok := lookup("VALKEY_ADDR"); ok && v != "" {
		c.Store.ValkeyAddr = v
	}
	return nil
}

func (c *Config) SaveWindow() time.Duration {
	return time.Duration(c.SaveWindowMs) * time.Millisecond
}

func (c *Config) LiveTimeout() time.Duration {
	return time.Duration(c.LiveTimeoutMs) * time.Millisecond
}
