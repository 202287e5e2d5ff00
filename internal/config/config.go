// Package config resolves settings from flags, TODO_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"git.sr.ht/~jakintosh/todo/internal/logging"
)

const envPrefix = "TODO"

type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// Key is the slot key the task list is stored under.
	Key string `mapstructure:"key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Config struct {
	Addr    string        `mapstructure:"addr"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// LoggingOptions adapts the log section for logging.New.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
	}
}

// flagKeys maps flag names to their config keys.
var flagKeys = map[string]string{
	"addr":       "addr",
	"storage":    "storage.driver",
	"db":         "storage.path",
	"key":        "storage.key",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
}

// NewFlagSet declares the command's flags.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Config file (yaml, toml or json) (env: TODO_CONFIG)")
	fs.String("addr", "", "HTTP listen address (env: TODO_ADDR)")
	fs.String("storage", "", "Storage driver: sqlite or memory (env: TODO_STORAGE_DRIVER)")
	fs.String("db", "", "SQLite database path (env: TODO_STORAGE_PATH)")
	fs.String("key", "", "Storage key for the task list (env: TODO_STORAGE_KEY)")
	fs.String("log-level", "", "Log level: debug, info, warn, error (env: TODO_LOG_LEVEL)")
	fs.String("log-format", "", "Log format: text, json, logfmt (env: TODO_LOG_FORMAT)")
	fs.String("log-file", "", "Write logs to this file (env: TODO_LOG_FILE)")
	return fs
}

// Load parses args and returns the resolved config along with the
// remaining positional arguments.
func Load(args []string) (*Config, []string, error) {
	fs := NewFlagSet("todo")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "todo.db")
	v.SetDefault("storage.key", "colorfulTodoTasks")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	configFile, _ := fs.GetString("config")
	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, fs.Args(), nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key must not be empty")
	}
	return nil
}
