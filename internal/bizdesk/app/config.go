package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/mail"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	DatabaseDriver   string `env:"BIZDESK_DATABASE_DRIVER" envDefault:"sqlite"` // sqlite or postgres
	DatabaseFile     string `env:"BIZDESK_DATABASE_FILE" envDefault:"bizdesk.db"`
	DatabaseURL      string `env:"BIZDESK_DATABASE_URL"` // required for postgres
	DatabaseMaxConns int    `env:"BIZDESK_DATABASE_MAX_CONNS" envDefault:"10"`

	PepperFile      string `env:"BIZDESK_PEPPER_FILE" envDefault:"pepper"`
	HashConcurrency int    `env:"BIZDESK_HASH_CONCURRENCY"` // 0 means GOMAXPROCS

	// BaseURL is the public address used in invitation links.
	BaseURL           string        `env:"BIZDESK_BASE_URL" envDefault:"http://localhost:8080"`
	SessionTTL        time.Duration `env:"BIZDESK_SESSION_TTL" envDefault:"168h"`
	InvitationTTL     time.Duration `env:"BIZDESK_INVITATION_TTL" envDefault:"48h"`
	CookieSecure      bool          `env:"BIZDESK_COOKIE_SECURE"`
	ExposeInviteLinks bool          `env:"BIZDESK_EXPOSE_INVITE_LINKS"`

	SMTP mail.Config `envPrefix:"BIZDESK_SMTP_"`
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("BIZDESK_DATABASE_FILE is required for sqlite"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("BIZDESK_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("BIZDESK_DATABASE_DRIVER %q: want sqlite or postgres", c.DatabaseDriver))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q: want json or text", c.LogFormat))
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("BIZDESK_BASE_URL %q is not an absolute http(s) URL", c.BaseURL))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("BIZDESK_SESSION_TTL must be positive"))
	}
	if c.InvitationTTL <= 0 {
		errs = append(errs, errors.New("BIZDESK_INVITATION_TTL must be positive"))
	}
	if c.HashConcurrency < 0 {
		errs = append(errs, errors.New("BIZDESK_HASH_CONCURRENCY must not be negative"))
	}

	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("BIZDESK_SMTP_FROM is required when BIZDESK_SMTP_HOST is set"))
	}

	return errors.Join(errs...)
}
