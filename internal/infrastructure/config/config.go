package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLINICFIN_DATABASE_PASSWORD
const EnvPrefix = "CLINICFIN"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Tax       TaxConfig
	Payment   PaymentConfig
	Backfill  BackfillConfig
	Telemetry TelemetryConfig
	Swagger   SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error fatal"`
	Format string `validate:"oneof=json console"`
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string `validate:"oneof=development test staging production"`
	Port string `validate:"required,numeric"`
}

// IsProduction reports whether the production checks apply
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host               string
	Port               int `validate:"min=1,max=65535"`
	User               string
	Password           string
	DBName             string `validate:"required"`
	SSLMode            string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns       int    `validate:"min=1"`
	MaxIdleConns       int    `validate:"min=0"`
	ConnMaxLifetime    int    // in minutes
	ConnMaxIdleTime    int    // in minutes
	LogLevel           string `validate:"oneof=silent error warn info debug"`
	SlowQueryThreshold time.Duration
	MigrateOnStart     bool // apply embedded migrations before serving
}

// RedisConfig holds Redis connection settings.
// An empty Host disables the shared payment lock.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int           `validate:"min=0"`
	LockTTL  time.Duration // lifetime of a payment lock key
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	MaxHeaderBytes     int
	MaxBodySize        int64 `validate:"min=1"`
	MaxWebhookBodySize int64 `validate:"min=1"`
	CORSAllowOrigins   []string
	CORSAllowMethods   []string
	CORSAllowHeaders   []string
	TrustedProxies     []string
}

// TaxConfig holds the rates used when a clinic has no override.
// Rates are decimal strings such as "0.05"; validate parses them into Rates.
type TaxConfig struct {
	DefaultServiceTaxRate string
	WithholdingRate       string
	WithholdingThreshold  string
	BracketPolicy         string `validate:"oneof=fixed fator_r"`
	FatorRThreshold       string

	Rates TaxRates `validate:"-"`
}

// TaxRates is TaxConfig parsed into exact decimals
type TaxRates struct {
	DefaultServiceTaxRate decimal.Decimal
	WithholdingRate       decimal.Decimal
	WithholdingThreshold  decimal.Decimal
	FatorRThreshold       decimal.Decimal
}

// parse fills Rates. Rates must lie in [0, 1], the threshold must not be negative.
func (t *TaxConfig) parse() error {
	one := decimal.NewFromInt(1)
	fields := []struct {
		key     string
		raw     string
		dst     *decimal.Decimal
		bounded bool
	}{
		{"tax.default_service_tax_rate", t.DefaultServiceTaxRate, &t.Rates.DefaultServiceTaxRate, true},
		{"tax.withholding_rate", t.WithholdingRate, &t.Rates.WithholdingRate, true},
		{"tax.withholding_threshold", t.WithholdingThreshold, &t.Rates.WithholdingThreshold, false},
		{"tax.fator_r_threshold", t.FatorRThreshold, &t.Rates.FatorRThreshold, true},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return fmt.Errorf("%s: %q is not a decimal: %w", f.key, f.raw, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s cannot be negative", f.key)
		}
		if f.bounded && d.GreaterThan(one) {
			return fmt.Errorf("%s must be between 0 and 1", f.key)
		}
		*f.dst = d
	}
	return nil
}

// SwaggerConfig guards the API documentation endpoint
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDR ranges, empty allows all
}

// PaymentConfig holds webhook and provider settings
type PaymentConfig struct {
	WebhookSecret   string
	ProviderBaseURL string `validate:"required,url"`
	AccessToken     string
	RequestTimeout  time.Duration `validate:"gt=0"`
	LockTimeout     time.Duration `validate:"gt=0"`
}

// BackfillConfig holds the monthly rebuild schedule
type BackfillConfig struct {
	Enabled     bool
	Months      int           `validate:"min=1,max=60"`
	DayOfMonth  int           `validate:"min=1,max=28"`
	Hour        int           `validate:"min=0,max=23"`
	CellTimeout time.Duration `validate:"gt=0"`
	RunTimeout  time.Duration `validate:"gt=0"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 `validate:"gte=0,lte=1"`
	ServiceName       string
	Insecure          bool // development only
	MetricsInterval   time.Duration
	LogsEnabled       bool // export zap records through the OTLP log pipeline
	DBTraceEnabled    bool
	DBLogFullSQL      bool
}

// Load loads configuration from a .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CLINICFIN_ prefix
// 2. .env (only fills variables not already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:               v.GetString("database.host"),
			Port:               v.GetInt("database.port"),
			User:               v.GetString("database.user"),
			Password:           v.GetString("database.password"),
			DBName:             v.GetString("database.dbname"),
			SSLMode:            v.GetString("database.sslmode"),
			MaxOpenConns:       v.GetInt("database.max_open_conns"),
			MaxIdleConns:       v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime:    v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime:    v.GetInt("database.conn_max_idle_time"),
			LogLevel:           v.GetString("database.log_level"),
			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
			MigrateOnStart:     v.GetBool("database.migrate_on_start"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			LockTTL:  v.GetDuration("redis.lock_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:    v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			MaxBodySize:        v.GetInt64("http.max_body_size"),
			MaxWebhookBodySize: v.GetInt64("http.max_webhook_body_size"),
			CORSAllowOrigins:   v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:   v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:   v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:     v.GetStringSlice("http.trusted_proxies"),
		},
		Tax: TaxConfig{
			DefaultServiceTaxRate: v.GetString("tax.default_service_tax_rate"),
			WithholdingRate:       v.GetString("tax.withholding_rate"),
			WithholdingThreshold:  v.GetString("tax.withholding_threshold"),
			BracketPolicy:         v.GetString("tax.bracket_policy"),
			FatorRThreshold:       v.GetString("tax.fator_r_threshold"),
		},
		Payment: PaymentConfig{
			WebhookSecret:   v.GetString("payment.webhook_secret"),
			ProviderBaseURL: v.GetString("payment.provider_base_url"),
			AccessToken:     v.GetString("payment.access_token"),
			RequestTimeout:  v.GetDuration("payment.request_timeout"),
			LockTimeout:     v.GetDuration("payment.lock_timeout"),
		},
		Backfill: BackfillConfig{
			Enabled:     v.GetBool("backfill.enabled"),
			Months:      v.GetInt("backfill.months"),
			DayOfMonth:  v.GetInt("backfill.day_of_month"),
			Hour:        v.GetInt("backfill.hour"),
			CellTimeout: v.GetDuration("backfill.cell_timeout"),
			RunTimeout:  v.GetDuration("backfill.run_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "clinicfin"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "clinicfin"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}

	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = 30 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// a snapshot build scans and upserts a whole clinic month
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if cfg.HTTP.MaxWebhookBodySize == 0 {
		cfg.HTTP.MaxWebhookBodySize = 64 << 10
	}
	// CORS origins have no default: nothing cross-origin until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Signature"}
	}

	if cfg.Tax.DefaultServiceTaxRate == "" {
		cfg.Tax.DefaultServiceTaxRate = "0.05"
	}
	if cfg.Tax.WithholdingRate == "" {
		cfg.Tax.WithholdingRate = "0.015"
	}
	if cfg.Tax.WithholdingThreshold == "" {
		cfg.Tax.WithholdingThreshold = "666.67"
	}
	if cfg.Tax.BracketPolicy == "" {
		cfg.Tax.BracketPolicy = "fixed"
	}
	if cfg.Tax.FatorRThreshold == "" {
		cfg.Tax.FatorRThreshold = "0.28"
	}

	if cfg.Payment.ProviderBaseURL == "" {
		cfg.Payment.ProviderBaseURL = "https://api.mercadopago.com"
	}
	if cfg.Payment.RequestTimeout == 0 {
		cfg.Payment.RequestTimeout = 10 * time.Second
	}
	if cfg.Payment.LockTimeout == 0 {
		cfg.Payment.LockTimeout = 5 * time.Second
	}

	if cfg.Backfill.Months == 0 {
		cfg.Backfill.Months = 6
	}
	if cfg.Backfill.DayOfMonth == 0 {
		cfg.Backfill.DayOfMonth = 1
	}
	if cfg.Backfill.CellTimeout == 0 {
		cfg.Backfill.CellTimeout = 2 * time.Minute
	}
	if cfg.Backfill.RunTimeout == 0 {
		cfg.Backfill.RunTimeout = time.Hour
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

var structValidator = validator.New()

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.Tax.parse(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.IsProduction() {
		if len(c.Payment.WebhookSecret) < 16 {
			return fmt.Errorf("payment.webhook_secret must be at least 16 characters in production")
		}
		if c.Payment.AccessToken == "" {
			return fmt.Errorf("payment.access_token is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled or restricted by swagger.allowed_ips in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
