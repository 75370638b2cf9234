// Package config loads the CLI configuration: defaults, then the optional
// jotter.yaml file, then JOTTER_* environment variables. Command-line flags
// are applied by the caller last.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/reactive"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "JOTTER_"

// DefaultPath is where the fs adapter keeps its files when nothing else is set.
const DefaultPath = platform.DataDir

// Config is the resolved CLI configuration.
type Config struct {
	Adapter     string        `yaml:"adapter" validate:"required,oneof=memory fs sqlite redis s3 none"`
	Path        string        `yaml:"path"`
	Env         string        `yaml:"env" validate:"omitempty,max=64,excludes=:"`
	Namespace   string        `yaml:"namespace" validate:"omitempty,max=64"`
	Language    string        `yaml:"language" validate:"omitempty,bcp47_language_tag"`
	EventBuffer int           `yaml:"event_buffer" validate:"gte=0"`
	SearchDelay time.Duration `yaml:"search_delay" validate:"gte=0"`
	History     bool          `yaml:"history"`
	ReadOnly    bool          `yaml:"read_only"`
	Redis       RedisConfig   `yaml:"redis"`
	S3          S3Config      `yaml:"s3"`
}

// RedisConfig configures the redis adapter.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// S3Config configures the s3 adapter.
type S3Config struct {
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(adapterRequirements, Config{})
	return v
}

// adapterRequirements checks the settings the selected adapter cannot work without.
func adapterRequirements(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.History && c.Adapter != platform.AdapterFS {
		sl.ReportError(c.History, "History", "history", "fs_only", c.Adapter)
	}
	switch c.Adapter {
	case platform.AdapterFS, platform.AdapterSQLite:
		if c.Path == "" {
			sl.ReportError(c.Path, "Path", "path", "required_for_adapter", c.Adapter)
		}
	case platform.AdapterRedis:
		if c.Redis.Addr == "" {
			sl.ReportError(c.Redis.Addr, "Redis.Addr", "addr", "required_for_adapter", c.Adapter)
		}
	case platform.AdapterS3:
		if c.S3.Bucket == "" {
			sl.ReportError(c.S3.Bucket, "S3.Bucket", "bucket", "required_for_adapter", c.Adapter)
		}
	}
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Adapter:     platform.AdapterFS,
		Path:        DefaultPath,
		SearchDelay: reactive.DefaultSearchDelay,
	}
}

// Load resolves the configuration from path (skipped when empty or, unless
// required, missing) and the process environment, then validates it.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.Decode(bytes.NewReader(data)); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays the YAML document read from r. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays JOTTER_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ADAPTER", &c.Adapter)
	str("PATH", &c.Path)
	str("ENV", &c.Env)
	str("NAMESPACE", &c.Namespace)
	str("LANGUAGE", &c.Language)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("S3_REGION", &c.S3.Region)
	str("S3_BUCKET", &c.S3.Bucket)
	str("S3_PREFIX", &c.S3.Prefix)
	str("S3_ACCESS_KEY_ID", &c.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey)

	for name, dst := range map[string]*bool{
		"S3_PATH_STYLE": &c.S3.PathStyle,
		"HISTORY":       &c.History,
		"READ_ONLY":     &c.ReadOnly,
	} {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}
	if v, ok := lookup(EnvPrefix + "EVENT_BUFFER"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sEVENT_BUFFER: %w", EnvPrefix, err)
		}
		c.EventBuffer = n
	}
	if v, ok := lookup(EnvPrefix + "SEARCH_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSEARCH_DELAY: %w", EnvPrefix, err)
		}
		c.SearchDelay = d
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return ve
}

// Options translates the configuration into workspace options.
func (c Config) Options() []platform.Option {
	opts := []platform.Option{
		platform.WithAdapter(c.Adapter),
		platform.WithPath(c.Path),
		platform.WithEnv(c.Env),
		platform.WithEventBuffer(c.EventBuffer),
		platform.WithRedisAddr(c.Redis.Addr),
		platform.WithHistory(c.History),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithS3(s3.Config{
			Endpoint:        c.S3.Endpoint,
			Region:          c.S3.Region,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Bucket:          c.S3.Bucket,
			Prefix:          c.S3.Prefix,
			UsePathStyle:    c.S3.PathStyle,
		}),
	}
	if c.Namespace != "" {
		opts = append(opts, platform.WithNamespace(c.Namespace))
	}
	if c.Language != "" {
		// Validate already accepted the tag.
		opts = append(opts, platform.WithLanguage(language.Make(c.Language)))
	}
	return opts
}
