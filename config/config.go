// Package config loads editor settings from a YAML file, a .env file and
// DUNGEONCORE_* environment variables, in that order of precedence (last
// wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/dungeoncore/engine/effects"
	"github.com/nathoo/dungeoncore/refdata"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DUNGEONCORE_"

// Config holds all editor settings.
type Config struct {
	LogLevel      string    `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat     string    `yaml:"log_format" validate:"oneof=text json"`
	MergeStrategy string    `yaml:"merge_strategy" validate:"oneof=max min replace"`
	Seed          int64     `yaml:"seed"`
	BoardWidth    int       `yaml:"board_width" validate:"min=5,max=7"`
	CacheSize     int       `yaml:"cache_size" validate:"gte=0"`
	ScriptsDir    string    `yaml:"scripts_dir"`
	Reference     Reference `yaml:"reference"`
}

// Reference says where the catalogue of real dungeons comes from.
type Reference struct {
	Fetch bool     `yaml:"fetch"`
	URLs  []string `yaml:"urls" validate:"dive,url"`
	Files []string `yaml:"files" validate:"dive,required"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     "text",
		MergeStrategy: "max",
		BoardWidth:    6,
		CacheSize:     256,
		ScriptsDir:    "scripts",
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error; an empty path skips
// the file.
func Load(path string) (Config, error) {
	// .env is optional; real environment variables work without it.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := getEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnv("LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := getEnv("MERGE_STRATEGY"); ok {
		cfg.MergeStrategy = strings.ToLower(v)
	}
	if v, ok := getEnv("SCRIPTS"); ok {
		cfg.ScriptsDir = v
	}
	if v, ok := getEnv("SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSEED value: %w", EnvPrefix, err)
		}
		cfg.Seed = seed
	}
	if v, ok := getEnv("FETCH"); ok {
		fetch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sFETCH value: %w", EnvPrefix, err)
		}
		cfg.Reference.Fetch = fetch
	}
	if v, ok := getEnv("REFERENCE_URL"); ok {
		cfg.Reference.URLs = splitList(v)
	}
	if v, ok := getEnv("REFERENCE_FILE"); ok {
		cfg.Reference.Files = splitList(v)
	}
	return nil
}

// getEnv looks up a prefixed environment variable.
func getEnv(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(Reference)
		if r.Fetch && len(r.URLs)+len(r.Files) == 0 {
			sl.ReportError(r.URLs, "URLs", "urls", "source_required", "")
		}
	}, Reference{})
	return v
}

// Validate checks cfg and reports every problem in one error.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s is not a URL: %v", field, fe.Value())
	case "source_required":
		return "reference fetching is enabled but no urls or files are set"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Strategy returns the configured mechanics merge strategy.
func (c Config) Strategy() effects.Strategy {
	s, _ := effects.ParseStrategy(c.MergeStrategy)
	return s
}

// Fetchers returns one fetcher per configured reference source, URLs
// first. It returns nil when fetching is disabled.
func (c Config) Fetchers() []refdata.Fetcher {
	if !c.Reference.Fetch {
		return nil
	}
	var out []refdata.Fetcher
	for _, u := range c.Reference.URLs {
		out = append(out, refdata.HTTPFetcher{URL: u})
	}
	for _, p := range c.Reference.Files {
		out = append(out, refdata.FileFetcher{Path: p})
	}
	return out
}
