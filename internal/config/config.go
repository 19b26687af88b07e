package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvDevelopment relaxes secret requirements and switches the logger to console output.
const EnvDevelopment = "development"

// Config holds every process-wide setting. It is loaded once in main and passed
// into constructors; nothing else reads the environment.
type Config struct {
	App      App      `mapstructure:"app"`
	Database Database `mapstructure:"database"`
	Session  Session  `mapstructure:"session"`
	Auth     Auth     `mapstructure:"auth"`
	Google   Google   `mapstructure:"google"`
	RabbitMQ RabbitMQ `mapstructure:"rabbitmq"`
	Log      Log      `mapstructure:"log"`
}

// App holds HTTP server settings.
type App struct {
	Env         string `mapstructure:"env"`
	Port        string `mapstructure:"port"`
	CORSOrigins string `mapstructure:"cors_origins"`
	BodyLimit   int    `mapstructure:"body_limit"`
}

// Database selects the store driver: "postgres", "sqlite" or "memory".
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Session holds the signing secret for session tokens and OAuth state.
type Session struct {
	Secret string `mapstructure:"secret"`
}

// Auth holds password hashing settings.
type Auth struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// Google holds OAuth client credentials. Federated sign-in is disabled when ClientID is empty.
type Google struct {
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	RedirectURL     string `mapstructure:"redirect_url"`
	SuccessRedirect string `mapstructure:"success_redirect"`
}

// Enabled reports whether Google sign-in is configured.
func (g Google) Enabled() bool {
	return g.ClientID != ""
}

// RabbitMQ holds the broker URL. An empty URL disables event publishing.
type RabbitMQ struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// Log holds the zap log level.
type Log struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.cors_origins", "*")
	v.SetDefault("app.body_limit", 4*1024*1024)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "bookshelf.db")
	v.SetDefault("session.secret", "")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:8080/auth/google/callback")
	v.SetDefault("google.success_redirect", "/")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "bookshelf.events")
	v.SetDefault("log.level", "info")
}

// Load reads configuration from defaults, an optional file and the environment
// (APP_PORT, DATABASE_DSN, SESSION_SECRET, ...). Environment wins over the file.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that would make the service unsafe or unable to start.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is required"))
	} else if c.App.Env != EnvDevelopment && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 bytes"))
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost %d out of range", c.Auth.BcryptCost))
	}
	if c.Google.Enabled() && c.Google.ClientSecret == "" {
		errs = append(errs, errors.New("google.client_secret is required when google.client_id is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
