package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// Origin kinds.
const (
	OriginDir  = "dir"
	OriginHTTP = "http"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Port is the TCP port the HTTP server binds to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// Origin selects where pages come from: a local directory or an upstream URL.
	Origin string `koanf:"origin" validate:"required,oneof=dir http"`

	// AssetDir is served by the dir origin. Empty serves the embedded page.
	AssetDir string `koanf:"asset_dir"`

	// OriginURL is the base URL the http origin proxies to.
	OriginURL string `koanf:"origin_url" validate:"omitempty,url"`

	OriginTimeout time.Duration `koanf:"origin_timeout" validate:"gt=0"`

	// StatsDB is the bbolt file holding the stats record.
	StatsDB string `koanf:"stats_db" validate:"required"`

	// StatsKey is the key the stats record is stored under.
	StatsKey string `koanf:"stats_key" validate:"required"`

	// Locale drives thousands grouping in rendered counters.
	Locale string `koanf:"locale" validate:"required,bcp47"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DEFAULT_APP_CONFIG is applied before the environment is read.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:             "prod",
	LogLevel:        "info",
	Port:            8080,
	Origin:          OriginDir,
	AssetDir:        "",
	OriginURL:       "",
	OriginTimeout:   10 * time.Second,
	StatsDB:         "/var/lib/weave-edge/stats.db",
	StatsKey:        "hyperweave",
	Locale:          "en-US",
	ShutdownTimeout: 10 * time.Second,
}

// validBCP47 reports whether the field parses as a language tag.
func validBCP47(fl validator.FieldLevel) bool {
	_, err := language.Parse(fl.Field().String())
	return err == nil
}

// validOrigin requires an upstream URL whenever the http origin is selected.
func validOrigin(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(AppConfig)
	if cfg.Origin == OriginHTTP && cfg.OriginURL == "" {
		sl.ReportError(cfg.OriginURL, "OriginURL", "origin_url", "required_for_http_origin", "")
	}
}

// envLoader loads EDGE_* variables, lowercased and without the prefix.
// Replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "EDGE_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "EDGE_")), strings.TrimSpace(value)
		},
	}), nil)
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

var registerValidation = func(v *validator.Validate) error {
	v.RegisterStructValidation(validOrigin, AppConfig{})
	return v.RegisterValidation("bcp47", validBCP47)
}

// Load applies defaults, then the environment, and validates the result.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
