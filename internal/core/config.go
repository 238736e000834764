package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
	"github.com/timada-org/todos/internal/logging"
	"github.com/timada-org/todos/internal/todo"
)

type Database struct {
	Driver string `config:"driver" yaml:"driver"`
	DSN    string `config:"dsn" yaml:"dsn"`
}

type Cors struct {
	Origins []string `config:"origins" yaml:"origins"`
}

type Log struct {
	Level     string `config:"level" yaml:"level"`
	Format    string `config:"format" yaml:"format"`
	File      string `config:"file" yaml:"file"`
	MaxSizeMB int    `config:"max_size_mb" yaml:"max_size_mb"`
	MaxFiles  int    `config:"max_files" yaml:"max_files"`
}

type Broker struct {
	URL   string `config:"url" yaml:"url"`
	Topic string `config:"topic" yaml:"topic"`
}

type Config struct {
	Addr     string   `config:"addr" yaml:"addr"`
	Database Database `config:"database" yaml:"database"`
	Cors     Cors     `config:"cors" yaml:"cors"`
	Log      Log      `config:"log" yaml:"log"`
	Broker   Broker   `config:"broker" yaml:"broker"`
}

// NewConfig reads path and its optional ".local.yml" sibling. An empty path
// yields the defaults.
func NewConfig(path string) (*Config, error) {
	var appConfig Config

	if path != "" {
		c := config.NewWithOptions("todos", func(opt *config.Options) {
			opt.ParseEnv = true
			opt.DecoderConfig.TagName = "config"
		})

		c.AddDriver(yaml.Driver)

		if err := c.LoadFiles(path); err != nil {
			return nil, err
		}

		if err := c.LoadExists(localPath(path)); err != nil {
			return nil, err
		}

		if len(c.Data()) > 0 {
			if err := c.BindStruct("", &appConfig); err != nil {
				return nil, err
			}
		}
	}

	appConfig.applyDefaults()

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}

	return &appConfig, nil
}

func localPath(path string) string {
	for _, ext := range []string{".yml", ".yaml"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext) + ".local" + ext
		}
	}

	return path + ".local"
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}

	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "sql_app.db"
	}

	if len(c.Cors.Origins) == 0 {
		c.Cors.Origins = []string{"http://localhost", "http://localhost:3000"}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}

	if c.Log.MaxFiles == 0 {
		c.Log.MaxFiles = 5
	}

	if c.Broker.Topic == "" {
		c.Broker.Topic = "todos"
	}
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr cannot be empty")
	}

	if !slices.Contains(todo.Drivers(), c.Database.Driver) {
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("config: database dsn cannot be empty")
	}

	return nil
}

func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level:     c.Log.Level,
		Format:    c.Log.Format,
		File:      c.Log.File,
		MaxSizeMB: c.Log.MaxSizeMB,
		MaxFiles:  c.Log.MaxFiles,
	}
}
