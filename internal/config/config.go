// Package config loads folio settings from defaults, an optional YAML file
// and FOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Content ContentConfig `mapstructure:"content" yaml:"content"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port" yaml:"port"` // default 7117
	Host string `mapstructure:"host" yaml:"host"` // default "127.0.0.1"
}

// Store types.
const (
	StoreBolt   = "bolt"
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

type StoreConfig struct {
	Type       string `mapstructure:"type" yaml:"type"`             // bolt, sqlite, file or memory
	DataDir    string `mapstructure:"dataDir" yaml:"dataDir"`       // default "~/.folio/data"
	QuotaBytes int    `mapstructure:"quotaBytes" yaml:"quotaBytes"` // memory store only; 0 is unlimited
}

type ContentConfig struct {
	PostsSlot    string        `mapstructure:"postsSlot" yaml:"postsSlot"`
	ProjectsSlot string        `mapstructure:"projectsSlot" yaml:"projectsSlot"`
	LoadTimeout  time.Duration `mapstructure:"loadTimeout" yaml:"loadTimeout"` // project store read guard
	SeedFile     string        `mapstructure:"seedFile" yaml:"seedFile"`       // replaces bundled defaults when set

	// ResyncInterval reloads every store on a timer, for writers whose
	// changes the backend cannot report. 0 disables it.
	ResyncInterval time.Duration `mapstructure:"resyncInterval" yaml:"resyncInterval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // default "info"
	Format string `mapstructure:"format" yaml:"format"` // console or json
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 7117,
			Host: "127.0.0.1",
		},
		Store: StoreConfig{
			Type:    StoreBolt,
			DataDir: defaultDataDir(),
		},
		Content: ContentConfig{
			PostsSlot:      "blog-posts",
			ProjectsSlot:   "portfolio-projects",
			LoadTimeout:    5 * time.Second,
			ResyncInterval: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration. An explicit path must exist; otherwise
// ./folio.yaml and ~/.folio/folio.yaml are tried and may be absent.
// FOLIO_SERVER_PORT style environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".folio"))
		}
	}

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.dataDir", d.Store.DataDir)
	v.SetDefault("store.quotaBytes", d.Store.QuotaBytes)
	v.SetDefault("content.postsSlot", d.Content.PostsSlot)
	v.SetDefault("content.projectsSlot", d.Content.ProjectsSlot)
	v.SetDefault("content.loadTimeout", d.Content.LoadTimeout)
	v.SetDefault("content.seedFile", d.Content.SeedFile)
	v.SetDefault("content.resyncInterval", d.Content.ResyncInterval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreBolt, StoreSQLite, StoreFile, StoreMemory:
	default:
		return fmt.Errorf("unknown store type %q (want bolt, sqlite, file or memory)", c.Store.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Content.PostsSlot == "" || c.Content.ProjectsSlot == "" {
		return errors.New("content slot names must not be empty")
	}
	if c.Content.PostsSlot == c.Content.ProjectsSlot {
		return fmt.Errorf("posts and projects share slot %q", c.Content.PostsSlot)
	}
	if c.Content.LoadTimeout < 0 {
		return fmt.Errorf("negative load timeout %s", c.Content.LoadTimeout)
	}
	if c.Content.ResyncInterval < 0 {
		return fmt.Errorf("negative resync interval %s", c.Content.ResyncInterval)
	}
	return nil
}

// ServerAddress returns the listen address in "host:port" format.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DBPath returns the database file for the bolt and sqlite stores.
func (c *Config) DBPath() string {
	if c.Store.Type == StoreSQLite {
		return filepath.Join(c.Store.DataDir, "folio.sqlite")
	}
	return filepath.Join(c.Store.DataDir, "folio.db")
}

// defaultDataDir resolves the default data directory.
// It uses os.UserHomeDir() + "/.folio/data", falling back to "/tmp/folio/data"
// if the home directory cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "folio", "data")
	}
	return filepath.Join(home, ".folio", "data")
}
