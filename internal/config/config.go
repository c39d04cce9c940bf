package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v3"
)

const (
	// DialectRegex compiles patterns as regular expressions; the
	// default, and the only dialect that can rewrite text buffers.
	DialectRegex = "regex"
	// DialectGlob compiles patterns as doublestar globs.
	DialectGlob = "glob"
)

// Config carries the engine's settings. Precedence is defaults, then
// the optional YAML file, then FSCLIP_* environment variables.
type Config struct {
	TemporaryRoot  string `yaml:"temporary_root" envconfig:"TEMPORARY_ROOT"`
	PersistentRoot string `yaml:"persistent_root" envconfig:"PERSISTENT_ROOT"`
	Clipboard      string `yaml:"clipboard" envconfig:"CLIPBOARD"`
	SafeCopy       bool   `yaml:"safe_copy" envconfig:"SAFE_COPY"`
	Dialect        string `yaml:"dialect" envconfig:"DIALECT"`
	LogLevel       string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

type ErrBadDialect struct {
	dialect string
}

func (e *ErrBadDialect) Error() string {
	return "unknown pattern dialect: " + e.dialect + " (want regex or glob)"
}

func Default() *Config {
	cfg := Config{
		TemporaryRoot: filepath.Join(os.TempDir(), "fsclip"),
		Clipboard:     "0",
		SafeCopy:      false,
		Dialect:       DialectRegex,
		LogLevel:      "warn",
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.PersistentRoot = filepath.Join(home, ".local", "share", "fsclip")
	} else {
		cfg.PersistentRoot = filepath.Join(os.TempDir(), "fsclip-persistent")
	}

	return &cfg
}

// Load builds the configuration from the defaults, the config file if
// one exists, and the environment.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("FSCLIP_CONFIG")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "fsclip", "config.yml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			err = yaml.Unmarshal(data, cfg)
			if err != nil {
				return nil, err
			}
		} else if errors.Is(err, os.ErrNotExist) == false {
			return nil, err
		}
	}

	// the environment wins over the file
	err := envconfig.Process("fsclip", cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Dialect != DialectRegex && cfg.Dialect != DialectGlob {
		return nil, &ErrBadDialect{dialect: cfg.Dialect}
	}

	return cfg, nil
}
