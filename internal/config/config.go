package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// DBConfig holds the optional generation ledger database configuration
type DBConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Database        string        `env:"NAME"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	Table           string        `env:"TABLE" envDefault:"generated_images"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"2"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
}

// Config holds all configuration for the tool
type Config struct {
	// GeminiAPIKey is not required at parse time; its absence is reported
	// by the generation service.
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	Args           string        `env:"TELLAR_ARGS" envDefault:"{}"`
	Model          string        `env:"DRAW_MODEL" envDefault:"imagen-3.0-generate-002"`
	BaseURL        string        `env:"DRAW_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	AttachmentsDir string        `env:"DRAW_ATTACHMENTS_DIR" envDefault:"brain/attachments"`
	HTTPTimeout    time.Duration `env:"DRAW_HTTP_TIMEOUT" envDefault:"0s"`
	LogLevel       slog.Level    `env:"DRAW_LOG_LEVEL" envDefault:"WARN"`
	DB             DBConfig      `envPrefix:"DB_"`
}

// Load loads the configuration from environment variables. Variables from the
// given .env files are applied first without overriding the process
// environment; files that do not exist are skipped.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s file: %w", file, err)
		}
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings that cannot be expressed as tags
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Model == "" {
		result = multierror.Append(result, errors.New("DRAW_MODEL must not be empty"))
	}
	if c.BaseURL == "" {
		result = multierror.Append(result, errors.New("DRAW_BASE_URL must not be empty"))
	}
	if c.AttachmentsDir == "" {
		result = multierror.Append(result, errors.New("DRAW_ATTACHMENTS_DIR must not be empty"))
	}
	if c.HTTPTimeout < 0 {
		result = multierror.Append(result, errors.New("DRAW_HTTP_TIMEOUT must not be negative"))
	}

	if err := result.ErrorOrNil(); err != nil {
		result.ErrorFormat = joinErrors
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks that an enabled ledger has enough settings to connect.
// Problems here disable the ledger instead of failing the run.
func (d DBConfig) Validate() error {
	var result *multierror.Error

	if d.User == "" {
		result = multierror.Append(result, errors.New("DB_USER is required"))
	}
	if d.Database == "" {
		result = multierror.Append(result, errors.New("DB_NAME is required"))
	}
	if d.Table == "" {
		result = multierror.Append(result, errors.New("DB_TABLE must not be empty"))
	}
	if d.ConnectTimeout <= 0 {
		result = multierror.Append(result, errors.New("DB_CONNECT_TIMEOUT must be positive"))
	}

	if err := result.ErrorOrNil(); err != nil {
		result.ErrorFormat = joinErrors
		return fmt.Errorf("invalid ledger configuration: %w", err)
	}
	return nil
}

// joinErrors keeps aggregated validation errors on a single line
func joinErrors(errs []error) string {
	return strings.Join(lo.Map(errs, func(err error, _ int) string {
		return err.Error()
	}), "; ")
}

// Enabled reports whether the generation ledger is configured
func (d DBConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns the PostgreSQL connection string. The password is omitted when
// empty so trust and peer authentication keep working.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Database, d.SSLMode)
	if d.Password != "" {
		dsn += " password=" + d.Password
	}
	return dsn
}
