package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/twixread/internal/convert"
	"github.com/samcharles93/twixread/internal/logger"
)

// Config represents the twixread configuration file
// (~/.config/twixread/config.yaml). Zero values mean "not set".
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	DataRoot      string `yaml:"data_root"`

	// Protocol defaults for the extent flags.
	Extents convert.Extents `yaml:"extents"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "twixread", "config.yaml")
}

// loadConfig reads the config file at path. A missing file is only an
// error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig fills option values from cfg when the corresponding flag was
// not explicitly set.
func applyConfig(c *cli.Command, cfg Config, o *options) {
	if cfg.LogLevel != "" && !isSet(c, "log-level") {
		o.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !isSet(c, "log-format") {
		o.logFormat = cfg.LogFormat
	}
	set := func(name string, dst *int64, v int) {
		if v != 0 && !isSet(c, name) {
			*dst = int64(v)
		}
	}
	set("readout", &o.readout, cfg.Extents.Readout)
	set("phase1", &o.phase1, cfg.Extents.Phase1)
	set("phase2", &o.phase2, cfg.Extents.Phase2)
	set("slices", &o.slices, cfg.Extents.Slices)
	set("channels", &o.channels, cfg.Extents.Channels)
}

// prepare loads the config, applies it to o and installs the logger in the
// returned context.
func (o *options) prepare(ctx context.Context, c *cli.Command) (context.Context, Config, error) {
	path, explicit := o.defaultConfig, false
	if o.configFile != "" {
		path, explicit = o.configFile, true
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return ctx, Config{}, err
	}
	applyConfig(c, cfg, o)

	log, err := logger.Setup(c.Root().ErrWriter, o.logLevel, o.logFormat, o.debug)
	if err != nil {
		return ctx, Config{}, usageErrorf("%v", err)
	}
	if explicit {
		log.Debug("config loaded", "path", path)
	}
	return logger.WithContext(ctx, log), cfg, nil
}
