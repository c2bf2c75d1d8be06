// Package config loads runtime settings for the course registration form from
// an optional YAML file and COURSEFORM_* environment variables. Defaults
// reproduce the Spanish labels of the registration page.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-courseform/pkg/registration"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "COURSEFORM_"

var (
	errAddrRequired   = errors.New("config: server.addr is required")
	errGraceInvalid   = errors.New("config: server.grace must be positive")
	errSessionTTL     = errors.New("config: server.sessionTTL must be positive")
	errLogFormat      = errors.New("config: log.format must be console or json")
	errNoticeRequired = errors.New("config: form.notice is required")
)

// Config is the root configuration document.
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Form   FormConfig   `yaml:"form" envPrefix:"FORM_"`
	Theme  ThemeConfig  `yaml:"theme" envPrefix:"THEME_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Addr       string        `yaml:"addr" env:"ADDR"`
	Grace      time.Duration `yaml:"grace" env:"GRACE"`
	SessionTTL time.Duration `yaml:"sessionTTL" env:"SESSION_TTL"`
}

// FormConfig holds every user-facing string rendered by the presentation
// layers.
type FormConfig struct {
	Notice string `yaml:"notice" env:"NOTICE"`
	Labels Labels `yaml:"labels" envPrefix:"LABEL_"`
}

// Labels may contain inline markup; renderers sanitise them before output.
type Labels struct {
	Title      string `yaml:"title" env:"TITLE" json:"title"`
	Name       string `yaml:"name" env:"NAME" json:"name"`
	Email      string `yaml:"email" env:"EMAIL" json:"email"`
	Courses    string `yaml:"courses" env:"COURSES" json:"courses"`
	CourseName string `yaml:"courseName" env:"COURSE_NAME" json:"courseName"`
	Date       string `yaml:"date" env:"DATE" json:"date"`
	Credits    string `yaml:"credits" env:"CREDITS" json:"credits"`
	Instructor string `yaml:"instructor" env:"INSTRUCTOR" json:"instructor"`
	AddRow     string `yaml:"addRow" env:"ADD_ROW" json:"addRow"`
	Submit     string `yaml:"submit" env:"SUBMIT" json:"submit"`
}

type ThemeConfig struct {
	Name    string            `yaml:"name" env:"NAME"`
	Variant string            `yaml:"variant" env:"VARIANT"`
	Tokens  map[string]string `yaml:"tokens" env:"TOKENS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":8080",
			Grace:      5 * time.Second,
			SessionTTL: 30 * time.Minute,
		},
		Form: FormConfig{
			Notice: registration.DefaultNoticeMessage,
			Labels: DefaultLabels(),
		},
		Theme: ThemeConfig{
			Name:    "taller",
			Variant: "light",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultLabels returns the built-in Spanish captions.
func DefaultLabels() Labels {
	return Labels{
		Title:      "Formulario de Registro",
		Name:       "Nombre:",
		Email:      "Correo Electrónico:",
		Courses:    "Materias Cursadas",
		CourseName: "Materia:",
		Date:       "Fecha:",
		Credits:    "Número de Créditos:",
		Instructor: "Docente:",
		AddRow:     "Agregar Materia",
		Submit:     "Enviar",
	}
}

// Load reads the optional YAML file at path on top of Default and then
// applies environment overrides from the process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv behaves like Load but reads overrides from environ instead of
// the process environment when environ is non-nil.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges a YAML document into cfg. Keys absent from the document keep
// their current values.
func Decode(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: target is nil")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks settings that would otherwise fail at runtime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errAddrRequired
	}
	if c.Server.Grace <= 0 {
		return errGraceInvalid
	}
	if c.Server.SessionTTL <= 0 {
		return errSessionTTL
	}
	if strings.TrimSpace(c.Form.Notice) == "" {
		return errNoticeRequired
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errLogFormat
	}
	return nil
}
