package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/algonotes/internal/scheduler"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Render  RenderConfig      `yaml:"render"`
	Index   IndexConfig       `yaml:"index"`
	Auth    AuthConfig        `yaml:"auth"`
	Desk    DeskConfig        `yaml:"desk"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Desk.Validate()
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
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// allows every origin.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required)),
	)
}

// ContentConfig holds the path to the directory of markdown posts.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AttachmentsPath is where uploaded images live.
func (c *ContentConfig) AttachmentsPath() string {
	return c.Path + "/attachments"
}

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

// RenderConfig controls markdown to HTML conversion.
type RenderConfig struct {
	UnsafeHTML bool `yaml:"unsafe_html"`
	Sanitize   bool `yaml:"sanitize"`
}

// IndexConfig controls background index maintenance.
//
// ResyncSchedule is a cron expression or descriptor ("@every 10m"); empty
// disables periodic resync. EventThrottle bounds how often index.updated
// events reach SSE clients.
type IndexConfig struct {
	ResyncSchedule string        `yaml:"resync_schedule"`
	EventThrottle  time.Duration `yaml:"event_throttle"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ResyncSchedule, validation.By(func(v any) error {
			spec, _ := v.(string)
			if spec == "" {
				return nil
			}
			return scheduler.Validate(spec)
		})),
		validation.Field(&c.EventThrottle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
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

// DeskConfig configures the terminal desk client.
type DeskConfig struct {
	// APIBase is the server root, e.g. http://localhost:8080.
	APIBase string `yaml:"api_base"`
	// LogFile receives desk logs; empty discards them.
	LogFile string `yaml:"log_file"`
	// MinWidth and MinHeight floor window sizes, in terminal cells.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
}

// Validate validates the desk configuration.
func (c *DeskConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIBase, validation.Required, validation.By(httpURL)),
		validation.Field(&c.MinWidth, validation.Required, validation.Min(10)),
		validation.Field(&c.MinHeight, validation.Required, validation.Min(4)),
	)
}

func httpURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path: "./content",
		},
		SQLite: SQLiteConfig{
			Path: "./algonotes.db",
		},
		Index: IndexConfig{
			ResyncSchedule: "@every 10m",
			EventThrottle:  2 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Desk: DeskConfig{
			APIBase:   "http://localhost:8080",
			MinWidth:  40,
			MinHeight: 10,
		},
	}
}
