// Package config loads advsearch settings from an optional YAML file and
// ADVSEARCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/narrate"
)

// EnvPrefix prefixes every environment override: server.addr is read
// from ADVSEARCH_SERVER_ADDR.
const EnvPrefix = "ADVSEARCH"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Narration NarrationConfig `mapstructure:"narration"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CatalogConfig struct {
	Fixture   string `mapstructure:"fixture"`    // YAML fixture served from memory
	DB        string `mapstructure:"db"`         // SQLite catalog; wins over Fixture
	CacheSize int    `mapstructure:"cache_size"` // node label LRU entries
}

type NarrationConfig struct {
	Language        string `mapstructure:"language"`
	DefaultLanguage string `mapstructure:"default_language"`
	Messages        string `mapstructure:"messages"` // YAML msgid -> translation file
}

// Languages returns the label language preferences.
func (n NarrationConfig) Languages() catalog.Languages {
	return catalog.Languages{Preferred: n.Language, Default: n.DefaultLanguage}
}

// Phrase loads the message file, or returns nil (English) when none is
// configured.
func (n NarrationConfig) Phrase() (narrate.PhraseFunc, error) {
	if n.Messages == "" {
		return nil, nil
	}
	data, err := os.ReadFile(n.Messages)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	messages := map[string]string{}
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse messages %s: %w", n.Messages, err)
	}
	return narrate.Catalog(messages), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("catalog.fixture", "")
	v.SetDefault("catalog.db", "")
	v.SetDefault("catalog.cache_size", catalog.DefaultCacheSize)
	v.SetDefault("narration.language", "en")
	v.SetDefault("narration.default_language", "en")
	v.SetDefault("narration.messages", "")
}

// New returns a viper instance with defaults and environment binding but
// no file loaded. Commands bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or when path is empty searches for advsearch.yaml in
// the working directory and $HOME/.config/advsearch. A missing file is
// only an error when path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("advsearch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "advsearch"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize canonicalises language tags and checks ranges.
func (c *Config) normalize() error {
	var errs []error

	for _, lang := range []*string{&c.Narration.Language, &c.Narration.DefaultLanguage} {
		canonical, err := CanonicalLanguage(*lang)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*lang = canonical
	}
	if c.Catalog.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("catalog.cache_size must not be negative, got %d", c.Catalog.CacheSize))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	return errors.Join(errs...)
}

// CanonicalLanguage parses a BCP 47 tag and returns its canonical form
// ("EN-us" becomes "en-US"). Empty input stays empty.
func CanonicalLanguage(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", tag, err)
	}
	return t.String(), nil
}
