// Package config loads bigdirs settings from a YAML file. Command line flags
// are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/riadafridishibly/bigdirs/scanner"
	"github.com/riadafridishibly/bigdirs/schedule"
)

const (
	CfgFileName = "config.yaml"
	PathLocal   = "."
	PathUser    = ".bigdirs"
	PathGlobal  = "/etc/bigdirs"

	DefaultThreshold Bytes = 1 << 30
	DefaultListen          = ":9140"
)

type Config struct {
	// Root is scanned when no path is given on the command line.
	Root             string        `yaml:"root"`
	Threshold        Bytes         `yaml:"threshold"`
	Workers          int           `yaml:"workers"`
	ProgressMode     string        `yaml:"progress_mode"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	LogLevel         string        `yaml:"log_level"`
	LogFile          string        `yaml:"log_file"`
	RescanSchedule   string        `yaml:"rescan_schedule"`
	HTTP             HTTP          `yaml:"http"`
	// Theme names the terminal UI color scheme.
	Theme string `yaml:"theme"`
}

type HTTP struct {
	Listen    string     `yaml:"listen"`
	BasicAuth *BasicAuth `yaml:"basic_auth"`
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func Default() *Config {
	return &Config{
		Threshold:        DefaultThreshold,
		ProgressMode:     string(scanner.ProgressDiscovered),
		ProgressInterval: scanner.DefaultProgressInterval,
		LogLevel:         log.InfoLevel.String(),
		HTTP:             HTTP{Listen: DefaultListen},
	}
}

// SearchDirectories lists where Load looks for config.yaml, in order.
func SearchDirectories() []string {
	dirs := []string{PathLocal}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, PathUser))
	}
	return append(dirs, PathGlobal)
}

// Load reads the configuration at path. With an empty path the search
// directories are tried and a missing file means defaults. The returned
// string is the file actually used, if any.
func Load(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := loadFile(path)
		return cfg, path, err
	}

	for _, dir := range SearchDirectories() {
		candidate := filepath.Join(dir, CfgFileName)
		log.Debugf("Checking for configuration file at %s", candidate)

		cfg, err := loadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, candidate, err
		}

		log.Debugf("Found configuration file at %s", candidate)
		return cfg, candidate, nil
	}

	return Default(), "", nil
}

func loadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ParseFromString(content string) (*Config, error) {
	return Parse(strings.NewReader(content))
}

func (c *Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be greater than zero, got %d", int64(c.Threshold))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval must be positive")
	}
	if _, err := scanner.ParseProgressMode(c.ProgressMode); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RescanSchedule != "" {
		if _, err := schedule.Parse(c.RescanSchedule); err != nil {
			return err
		}
	}
	if auth := c.HTTP.BasicAuth; auth != nil && auth.Username == "" {
		return fmt.Errorf("http.basic_auth requires a username")
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("Cannot parse log level, defaulting to 'info': %s", err)
		return log.InfoLevel
	}
	return level
}

// SessionOptions converts the scan settings for the scanner package.
// Validate must have succeeded.
func (c *Config) SessionOptions() scanner.SessionOptions {
	mode, _ := scanner.ParseProgressMode(c.ProgressMode)
	return scanner.SessionOptions{
		Workers:          c.Workers,
		ProgressMode:     mode,
		ProgressInterval: c.ProgressInterval,
	}
}
