package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"scribe/markup"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	LayoutConfig struct {
		PageWidth      float64 `yaml:"page_width" validate:"gt=0"`
		PageHeight     float64 `yaml:"page_height" validate:"gt=0"`
		MarginLeft     float64 `yaml:"margin_left" validate:"gte=0"`
		MarginRight    float64 `yaml:"margin_right" validate:"gte=0"`
		MarginTop      float64 `yaml:"margin_top" validate:"gte=0"`
		MarginBottom   float64 `yaml:"margin_bottom" validate:"gte=0"`
		BaseLineHeight float64 `yaml:"base_line_height" validate:"gt=0"`
		CharDensity    float64 `yaml:"char_density" validate:"gt=0"`
	}

	LogoConfig struct {
		DefaultImagePath string `yaml:"default_image_path" sanitize:"assure_file_access"`
		MaxWidth         int    `yaml:"max_width" validate:"min=16"`
		MaxHeight        int    `yaml:"max_height" validate:"min=16"`
	}

	DocumentConfig struct {
		FixZip                bool         `yaml:"fix_zip"`
		StylesPath            string       `yaml:"styles_path" sanitize:"assure_file_access"`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		PageNumbers           bool         `yaml:"page_numbers"`
		Compress              bool         `yaml:"compress"`
		Layout                LayoutConfig `yaml:"layout"`
		Logo                  LogoConfig   `yaml:"logo"`
	}

	AssistantConfig struct {
		Provider       Provider      `yaml:"provider"`
		Model          string        `yaml:"model" validate:"required"`
		BaseURL        string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey         SecretString  `yaml:"api_key"`
		Temperature    float64       `yaml:"temperature" validate:"gte=0,lte=2"`
		MaxTokens      int           `yaml:"max_tokens" validate:"gte=0"`
		Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
		MaxSourceChars int           `yaml:"max_source_chars" validate:"gte=0"`
	}

	ServerConfig struct {
		Listen      string        `yaml:"listen" validate:"required,hostname_port"`
		RateLimit   int           `yaml:"rate_limit" validate:"gte=0"`
		SessionTTL  time.Duration `yaml:"session_ttl" validate:"gt=0"`
		HistoryPath string        `yaml:"history_path" validate:"omitempty,filepath"`
		HistorySize int           `yaml:"history_size" validate:"gte=1"`
		MaxUploadMB int           `yaml:"max_upload_mb" validate:"min=1"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig  `yaml:"document"`
		Assistant AssistantConfig `yaml:"assistant"`
		Server    ServerConfig    `yaml:"server"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// Layout converts configured page geometry into layout used by paginator.
func (conf *LayoutConfig) Layout() markup.Layout {
	return markup.Layout{
		PageWidth:      conf.PageWidth,
		PageHeight:     conf.PageHeight,
		MarginLeft:     conf.MarginLeft,
		MarginRight:    conf.MarginRight,
		MarginTop:      conf.MarginTop,
		MarginBottom:   conf.MarginBottom,
		BaseLineHeight: conf.BaseLineHeight,
		CharDensity:    conf.CharDensity,
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("configuration sanitizing failed: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		// layout is checked as a whole, margins must leave some room for content
		if err := cfg.Document.Layout.Layout().Validate(); err != nil {
			return nil, fmt.Errorf("document layout: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump returns actual configuration as YAML, secrets are masked.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
