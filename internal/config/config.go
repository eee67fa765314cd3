// Package config loads the server configuration from an optional YAML file
// and DOCTOOLS_* environment variables.
//
// Keys are dotted (ai.provider, export.output_dir); the matching environment
// variable upper-cases the key, replaces dots with underscores and adds the
// prefix, so ai.api_key is read from DOCTOOLS_AI_API_KEY. Environment values
// override the file, which overrides the defaults declared on the structs.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DOCTOOLS"

// Config is the root configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	AI     AIConfig     `mapstructure:"ai"`
	OCR    OCRConfig    `mapstructure:"ocr"`
	Export ExportConfig `mapstructure:"export"`
	Editor EditorConfig `mapstructure:"editor"`
}

// LogConfig controls the zap logger. Logs always go to stderr; File adds a
// rotating log file.
type LogConfig struct {
	Level      string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" default:"console" validate:"oneof=console json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" default:"50" validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups" default:"3" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" default:"28" validate:"min=0"`
	Compress   bool   `mapstructure:"compress"`
}

// AIConfig selects and configures the AI capability provider. An empty
// Model selects the provider's default. APIKey falls back to the provider's
// usual environment variable (GEMINI_API_KEY, OPENAI_API_KEY, ...).
type AIConfig struct {
	Provider   string        `mapstructure:"provider" default:"gemini" validate:"oneof=gemini openai ollama anthropic mistral tesseract"`
	Model      string        `mapstructure:"model"`
	ImageModel string        `mapstructure:"image_model" default:"gemini-2.5-flash-image"`
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout" default:"2m"`
	MaxTokens  int           `mapstructure:"max_tokens" default:"8192" validate:"min=0"`
}

// OCRConfig configures the local Tesseract provider.
type OCRConfig struct {
	Language       string `mapstructure:"language" default:"eng" validate:"required"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
}

// ExportConfig configures document exporters.
type ExportConfig struct {
	OutputDir   string  `mapstructure:"output_dir" default:"." validate:"required"`
	PDFFont     string  `mapstructure:"pdf_font"`
	PDFFontSize float64 `mapstructure:"pdf_font_size" default:"11" validate:"gt=0,lte=72"`
}

// EditorConfig configures image editor sessions.
type EditorConfig struct {
	JPEGQuality int `mapstructure:"jpeg_quality" default:"90" validate:"min=1,max=100"`
	MaxSessions int `mapstructure:"max_sessions" default:"16" validate:"min=1"`
}

// Default returns the configuration with only struct defaults applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path (when non-empty) and the environment over the defaults and
// validates the result. Without a path, a doc-tools.yaml in the working
// directory is used if present.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, "", reflect.ValueOf(*cfg))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("doc-tools")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// registerDefaults makes every leaf key known to viper, so AutomaticEnv can
// resolve it during Unmarshal.
func registerDefaults(v *viper.Viper, prefix string, val reflect.Value) {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		fv := val.Field(i)
		if fv.Kind() == reflect.Struct {
			registerDefaults(v, key, fv)
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}
