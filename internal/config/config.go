package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Store   StoreConfig
	Library LibraryConfig
	Import  ImportConfig
	Gallery GalleryConfig
	Log     LogConfig
}

// StoreConfig selects where the gallery is saved.
type StoreConfig struct {
	Driver string // sqlite, file or memory
	Path   string // sqlite database file
	Dir    string // file driver directory
}

// LibraryConfig describes the directory images are picked from.
type LibraryConfig struct {
	Dir        string
	Extensions []string
	Recursive  bool
}

// ImportConfig tunes the concurrent import.
type ImportConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	DecodeTimeout time.Duration `mapstructure:"decode_timeout"`
}

// GalleryConfig holds startup behaviour.
type GalleryConfig struct {
	LoadOnStart bool `mapstructure:"load_on_start"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
	Path   string
}

func dataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "niuview")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "niuview")
}

func stateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return filepath.Join(v, "niuview")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "niuview")
}

// Path returns the config file location. NIUVIEW_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("NIUVIEW_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "niuview", "config.toml")
}

func newViper() *viper.Viper {
	v := viper.New()

	// default values
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", filepath.Join(dataHome(), "niuview.db"))
	v.SetDefault("store.dir", filepath.Join(dataHome(), "blobs"))
	v.SetDefault("library.dir", filepath.Join(os.Getenv("HOME"), "Pictures"))
	v.SetDefault("library.extensions", []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"})
	v.SetDefault("library.recursive", false)
	v.SetDefault("import.max_concurrent", 8)
	v.SetDefault("import.decode_timeout", "0s")
	v.SetDefault("gallery.load_on_start", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.path", filepath.Join(stateHome(), "niuview.log"))

	v.SetConfigType("toml")
	v.SetEnvPrefix("NIUVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads configuration from file and env. Env var overrides use prefix NIUVIEW_.
// A missing config file is not an error; a malformed one is.
func Load() (Config, error) {
	v := newViper()
	v.SetConfigFile(Path())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Import.MaxConcurrent < 0 {
		return Config{}, fmt.Errorf("import.max_concurrent must be >= 0, got %d", c.Import.MaxConcurrent)
	}
	if c.Import.DecodeTimeout < 0 {
		return Config{}, fmt.Errorf("import.decode_timeout must be >= 0, got %s", c.Import.DecodeTimeout)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("store.driver", cfg.Store.Driver)
	v.Set("store.path", cfg.Store.Path)
	v.Set("store.dir", cfg.Store.Dir)
	v.Set("library.dir", cfg.Library.Dir)
	v.Set("library.extensions", cfg.Library.Extensions)
	v.Set("library.recursive", cfg.Library.Recursive)
	v.Set("import.max_concurrent", cfg.Import.MaxConcurrent)
	v.Set("import.decode_timeout", cfg.Import.DecodeTimeout.String())
	v.Set("gallery.load_on_start", cfg.Gallery.LoadOnStart)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
