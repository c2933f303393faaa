package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notebook/internal/notes"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address. The bridge only listens on loopback.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig describes the notes directory and which files count as notes.
type NotesConfig struct {
	Directory         string   `yaml:"directory"`
	Extensions        []string `yaml:"extensions"`
	EnableAutosave    bool     `yaml:"enable_autosave"`
	UseStemming       bool     `yaml:"use_stemming"`
	PackagesDirectory string   `yaml:"packages_directory"`
	SeedDirectory     string   `yaml:"seed_directory"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Directory, validation.Required),
		validation.Field(&c.Extensions, validation.Each(validation.By(validExtension))),
	)
}

func validExtension(value any) error {
	ext, _ := value.(string)
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return errors.New("must start with '.' and name an extension")
	}
	if strings.ContainsAny(ext, `/\`) {
		return errors.New("must not contain a path separator")
	}
	return nil
}

// NotesDirectory implements notes.Settings.
func (c *Config) NotesDirectory() string { return c.Notes.Directory }

// NoteExtensions implements notes.Settings.
func (c *Config) NoteExtensions() []string { return c.Notes.Extensions }

// AutosaveEnabled reports whether modified notes are saved on lifecycle triggers.
func (c *Config) AutosaveEnabled() bool { return c.Notes.EnableAutosave }

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the HTTP bridge.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8484,
			},
		},
		Notes: NotesConfig{
			Directory:      "~/notes",
			Extensions:     []string{".md", ".markdown"},
			EnableAutosave: true,
			UseStemming:    true,
		},
		SQLite: SQLiteConfig{
			Path: "./notebook.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

// LiveConfig holds the current configuration snapshot. Readers always see
// a complete snapshot; Store swaps it atomically.
type LiveConfig struct {
	cur atomic.Pointer[Config]
}

// NewLiveConfig creates a LiveConfig starting at cfg.
func NewLiveConfig(cfg *Config) *LiveConfig {
	l := &LiveConfig{}
	l.cur.Store(cfg)
	return l
}

// Load returns the current snapshot.
func (l *LiveConfig) Load() *Config { return l.cur.Load() }

// Store replaces the current snapshot.
func (l *LiveConfig) Store(cfg *Config) { l.cur.Store(cfg) }

// NotesDirectory implements notes.Settings.
func (l *LiveConfig) NotesDirectory() string { return l.Load().NotesDirectory() }

// NoteExtensions implements notes.Settings.
func (l *LiveConfig) NoteExtensions() []string { return l.Load().NoteExtensions() }

// AutosaveEnabled reports the current autosave setting.
func (l *LiveConfig) AutosaveEnabled() bool { return l.Load().AutosaveEnabled() }

var (
	_ notes.Settings = (*Config)(nil)
	_ notes.Settings = (*LiveConfig)(nil)
)
