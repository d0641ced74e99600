package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server" envPrefix:"HTTP_"`
	Database      DatabaseConfig      `mapstructure:"database" envPrefix:"DB_"`
	Security      SecurityConfig      `mapstructure:"security" envPrefix:"SECURITY_"`
	Business      BusinessConfig      `mapstructure:"business" envPrefix:"BUSINESS_"`
	Report        ReportConfig        `mapstructure:"report" envPrefix:"REPORT_"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT" envDefault:"3000"`
	BaseURL           string        `mapstructure:"base_url" env:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"ALLOWED_ORIGINS" envDefault:"*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT" envDefault:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT" envDefault:"30s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
	Source          string        `mapstructure:"source" env:"SOURCE,required"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" env:"JWT_SECRET,required"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" env:"ACCESS_TOKEN_DURATION" envDefault:"12h"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST" envDefault:"10"`
	AdminUsername       string        `mapstructure:"admin_username" env:"ADMIN_USERNAME" envDefault:"admin"`
}

// BusinessConfig drives the business calendar.
type BusinessConfig struct {
	Timezone              string        `mapstructure:"timezone" env:"TIMEZONE" envDefault:"Asia/Jakarta"`
	RolloverHour          int           `mapstructure:"rollover_hour" env:"ROLLOVER_HOUR" envDefault:"6"`
	RolloverCheckInterval time.Duration `mapstructure:"rollover_check_interval" env:"ROLLOVER_CHECK_INTERVAL" envDefault:"1m"`
}

type ReportConfig struct {
	MaxRangeDays     int `mapstructure:"max_range_days" env:"MAX_RANGE_DAYS" envDefault:"30"`
	DefaultRangeDays int `mapstructure:"default_range_days" env:"DEFAULT_RANGE_DAYS" envDefault:"7"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" envPrefix:"LOG_"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL" envDefault:"info"`
	Format string `mapstructure:"format" env:"FORMAT" envDefault:"json"`
}

// LoadConfigFromEnv reads configuration from the process environment,
// loading a .env file first when one is present.
func LoadConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values left by a partial config file. The rollover
// hour is left alone since 0 (midnight) is a valid setting.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Security.AccessTokenDuration == 0 {
		c.Security.AccessTokenDuration = 12 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Security.AdminUsername == "" {
		c.Security.AdminUsername = "admin"
	}
	if c.Business.Timezone == "" {
		c.Business.Timezone = "Asia/Jakarta"
	}
	if c.Business.RolloverCheckInterval == 0 {
		c.Business.RolloverCheckInterval = time.Minute
	}
	if c.Report.MaxRangeDays == 0 {
		c.Report.MaxRangeDays = 30
	}
	if c.Report.DefaultRangeDays == 0 {
		c.Report.DefaultRangeDays = 7
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Business.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("business config: %v", err))
	}

	if err := c.Report.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("report config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits AllowedOrigins into the list the CORS middleware expects.
func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return []string{"*"}
	}
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("jwt_secret must be at least 16 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 4 and 15")
	}
	return nil
}

func (c *BusinessConfig) Validate() error {
	if c.RolloverHour < 0 || c.RolloverHour > 23 {
		return errors.New("rollover_hour must be between 0 and 23")
	}
	if c.RolloverCheckInterval < time.Second {
		return errors.New("rollover_check_interval must be at least 1s")
	}
	return nil
}

func (c *ReportConfig) Validate() error {
	if c.MaxRangeDays < 1 {
		return errors.New("max_range_days must be positive")
	}
	if c.DefaultRangeDays < 1 || c.DefaultRangeDays > c.MaxRangeDays {
		return errors.New("default_range_days must be between 1 and max_range_days")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
