// Package config loads speakerbox settings from a TOML file and the
// environment.
//
// Settings are read in increasing order of precedence from built-in
// defaults, ~/.config/speakerbox/config.toml (or the file given with
// --config), and SPEAKERBOX_* environment variables. Nested keys map to
// environment names by joining with underscores:
//
//	[extract]
//	api_key = "sk-..."        # SPEAKERBOX_EXTRACT_API_KEY
//
//	[cache]
//	backend = "redis"         # SPEAKERBOX_CACHE_BACKEND
//	[cache.redis]
//	addr = "localhost:6379"   # SPEAKERBOX_CACHE_REDIS_ADDR
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/extract"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "SPEAKERBOX"

// FileName is the config file name inside Dir.
const FileName = "config.toml"

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the complete application configuration.
type Config struct {
	Cache    CacheConfig    `mapstructure:"cache" toml:"cache"`
	Store    StoreConfig    `mapstructure:"store" toml:"store"`
	Extract  ExtractConfig  `mapstructure:"extract" toml:"extract"`
	Server   ServerConfig   `mapstructure:"server" toml:"server"`
	Defaults DefaultsConfig `mapstructure:"defaults" toml:"defaults"`
}

type CacheConfig struct {
	Backend string      `mapstructure:"backend" toml:"backend"` // file, redis or none
	Dir     string      `mapstructure:"dir" toml:"dir"`
	Redis   RedisConfig `mapstructure:"redis" toml:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"password,omitempty"`
	DB       int    `mapstructure:"db" toml:"db"`
	Prefix   string `mapstructure:"prefix" toml:"prefix"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend" toml:"backend"` // file, memory or mongo
	Path    string      `mapstructure:"path" toml:"path"`
	Mongo   MongoConfig `mapstructure:"mongo" toml:"mongo"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri" toml:"uri"`
	Database   string `mapstructure:"database" toml:"database"`
	Collection string `mapstructure:"collection" toml:"collection"`
}

type ExtractConfig struct {
	APIKey   string `mapstructure:"api_key" toml:"api_key"`
	Endpoint string `mapstructure:"endpoint" toml:"endpoint"`
	Model    string `mapstructure:"model" toml:"model"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// DefaultsConfig holds the values used when a layout input is left blank.
type DefaultsConfig struct {
	Topology         string  `mapstructure:"topology" toml:"topology"`
	WidthCm          float64 `mapstructure:"width_cm" toml:"width_cm"`
	HeightCm         float64 `mapstructure:"height_cm" toml:"height_cm"`
	DepthCm          float64 `mapstructure:"depth_cm" toml:"depth_cm"`
	DriverDiameterCm float64 `mapstructure:"driver_diameter_cm" toml:"driver_diameter_cm"`
}

// Dir returns the speakerbox config directory, ~/.config/speakerbox.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "get home dir")
	}
	return filepath.Join(home, ".config", "speakerbox"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Default returns the built-in configuration rooted at dir. An empty dir
// uses Dir().
func Default(dir string) Config {
	if dir == "" {
		dir, _ = Dir()
	}
	return Config{
		Cache: CacheConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(dir, "cache"),
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "speakerbox:"},
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    filepath.Join(dir, "calculations.json"),
			Mongo:   MongoConfig{Database: "speakerbox", Collection: "calculations"},
		},
		Extract: ExtractConfig{
			Endpoint: extract.DefaultEndpoint,
			Model:    extract.DefaultModel,
		},
		Server: ServerConfig{Addr: ":8080"},
		Defaults: DefaultsConfig{
			Topology:         string(enclosure.Sealed),
			WidthCm:          panel.DefaultWidthCm,
			HeightCm:         panel.DefaultHeightCm,
			DepthCm:          panel.DefaultDepthCm,
			DriverDiameterCm: panel.DefaultDriverDiameterCm,
		},
	}
}

// Load reads the configuration. If path is empty the default file is used
// when it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	setDefaults(v, Default(filepath.Dir(path)))

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicit || fileExists(path) {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config %s", path)
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Store.Path = expandHome(cfg.Store.Path)
	return cfg, cfg.Validate()
}

// setDefaults registers every key with viper so that environment variables
// are honored even when the file does not mention them.
func setDefaults(v *viper.Viper, d Config) {
	for key, val := range map[string]any{
		"cache.backend":               d.Cache.Backend,
		"cache.dir":                   d.Cache.Dir,
		"cache.redis.addr":            d.Cache.Redis.Addr,
		"cache.redis.password":        d.Cache.Redis.Password,
		"cache.redis.db":              d.Cache.Redis.DB,
		"cache.redis.prefix":          d.Cache.Redis.Prefix,
		"store.backend":               d.Store.Backend,
		"store.path":                  d.Store.Path,
		"store.mongo.uri":             d.Store.Mongo.URI,
		"store.mongo.database":        d.Store.Mongo.Database,
		"store.mongo.collection":      d.Store.Mongo.Collection,
		"extract.api_key":             d.Extract.APIKey,
		"extract.endpoint":            d.Extract.Endpoint,
		"extract.model":               d.Extract.Model,
		"server.addr":                 d.Server.Addr,
		"defaults.topology":           d.Defaults.Topology,
		"defaults.width_cm":           d.Defaults.WidthCm,
		"defaults.height_cm":          d.Defaults.HeightCm,
		"defaults.depth_cm":           d.Defaults.DepthCm,
		"defaults.driver_diameter_cm": d.Defaults.DriverDiameterCm,
	} {
		v.SetDefault(key, val)
	}
}

// Validate checks backend names and layout defaults.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendFile, BackendMemory, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid store backend %q (must be file, memory or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == BackendMongo && c.Store.Mongo.URI == "" {
		return errors.New(errors.ErrCodeMissingInput, "store.mongo.uri is required for the mongo backend")
	}
	if _, err := enclosure.ParseTopology(c.Defaults.Topology); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"defaults.width_cm":           c.Defaults.WidthCm,
		"defaults.height_cm":          c.Defaults.HeightCm,
		"defaults.depth_cm":           c.Defaults.DepthCm,
		"defaults.driver_diameter_cm": c.Defaults.DriverDiameterCm,
	} {
		if err := errors.ValidateDimension(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	if c.Extract.APIKey != "" {
		c.Extract.APIKey = mask(c.Extract.APIKey)
	}
	if c.Cache.Redis.Password != "" {
		c.Cache.Redis.Password = "********"
	}
	if c.Store.Mongo.URI != "" && strings.Contains(c.Store.Mongo.URI, "@") {
		c.Store.Mongo.URI = "********"
	}
	return c
}

func mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// WriteFile writes c to path. An existing file is only replaced when force
// is set.
func WriteFile(path string, c Config, force bool) error {
	if !force && fileExists(path) {
		return errors.New(errors.ErrCodeConflict, "%s already exists (use --force to overwrite)", path)
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write config")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
