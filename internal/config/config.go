package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

const SupportedVersion = "1"

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" default:"1"`
	Server  ServerConfig  `yaml:"server"`
	Editor  EditorConfig  `yaml:"editor"`
	Storage StorageConfig `yaml:"storage"`
	Upload  UploadConfig  `yaml:"upload"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
	// SessionIdleMinutes reaps sessions nobody has touched for that long.
	// Zero keeps them until the page says goodbye.
	SessionIdleMinutes int `yaml:"session_idle_minutes" default:"30"`
}

// EditorConfig holds the defaults applied to every editor session.
type EditorConfig struct {
	TabSize        int    `yaml:"tab_size" default:"4"`
	MinHeight      int    `yaml:"min_height" default:"200"`
	CanBackup      bool   `yaml:"can_backup" default:"true"`
	CheckLength    int    `yaml:"check_length" default:"3"`
	PreviewDelayMs int    `yaml:"preview_delay_ms" default:"300"`
	AddClass       string `yaml:"add_class" default:""`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" default:"sqlite"`
	Path        string `yaml:"path" default:"mdwidget.db"`
	Compression string `yaml:"compression" default:"zstd"`
}

type UploadConfig struct {
	Backend     string `yaml:"backend" default:"local"`
	Dir         string `yaml:"dir" default:"uploads"`
	PublicURL   string `yaml:"public_url" default:"/uploads/"`
	Bucket      string `yaml:"bucket" default:""`
	Endpoint    string `yaml:"endpoint" default:""`
	Region      string `yaml:"region" default:"auto"`
	MaxBytes    int    `yaml:"max_bytes" default:"10485760"`
	Concurrency int    `yaml:"concurrency" default:"4"`
}

type RenderConfig struct {
	Engine      string `yaml:"engine" default:"mmark"`
	SyntaxTheme string `yaml:"syntax_theme" default:"github"`
}

var AppConfig *Config

func init() {
	AppConfig = &Config{}
	applyDefaults(AppConfig)
}

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("unsupported configuration version %q (want %q)", c.Version, SupportedVersion)
	}
	switch c.Storage.Driver {
	case StorageDriverSQLite, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Upload.Backend {
	case UploadBackendLocal, UploadBackendS3, UploadBackendNone:
	default:
		return fmt.Errorf("unknown upload backend %q", c.Upload.Backend)
	}
	switch c.Render.Engine {
	case MarkdownEngineMmark, MarkdownEngineClassic:
	default:
		return fmt.Errorf("unknown render engine %q", c.Render.Engine)
	}
	switch c.Logging.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	if c.Server.SessionIdleMinutes < 0 {
		return fmt.Errorf("session idle minutes must not be negative, got %d", c.Server.SessionIdleMinutes)
	}
	if c.Upload.Concurrency < 1 {
		return fmt.Errorf("upload concurrency must be at least 1, got %d", c.Upload.Concurrency)
	}
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
