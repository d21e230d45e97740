package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kerbaras/companion/pkg/manifest"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "COMPANION_"

type Config struct {
	APIKey     string        `env:"API_KEY"`
	BungieURL  string        `env:"BUNGIE_URL" envDefault:"https://www.bungie.net"`
	VoluspaURL string        `env:"VOLUSPA_URL" envDefault:"https://voluspa.braytech.org"`
	DBPath     string        `env:"DB_PATH"`
	Language   string        `env:"LANGUAGE" envDefault:"en"`
	Offline    bool          `env:"OFFLINE"`
	Timeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile    string        `env:"LOG_FILE"`

	BnetMembershipID string `env:"BNET_MEMBERSHIP_ID"`
	MembershipID     string `env:"MEMBERSHIP_ID"`
}

// Load reads .env files (when present) and then the process environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return LoadFrom(nil)
}

// LoadFrom parses configuration from environ, or from the process
// environment when environ is nil.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// DefaultDBPath is ~/.companion/companion.db, or a file in the working
// directory when there is no home.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "companion.db"
	}
	return filepath.Join(home, ".companion", "companion.db")
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BungieURL, validation.Required),
		validation.Field(&c.VoluspaURL, validation.Required),
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.Language, validation.Required, validation.By(supportedLanguage)),
		validation.Field(&c.Timeout, validation.Min(time.Second)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

func supportedLanguage(value any) error {
	lang, _ := value.(string)
	for _, code := range manifest.Languages() {
		if code == lang {
			return nil
		}
	}
	return validation.NewError("validation_unsupported_language", "unsupported language")
}
