package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	CRM       CRMConfig
	SMTP      SMTPConfig
	SLA       SLAConfig
	ApiKey    ApiKeyConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// DashboardBaseURL is the public frontend URL embedded in
	// notification emails (links to tickets and tasks)
	DashboardBaseURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// CRMConfig holds settings for the CRM InCloud mirror.
// Mirroring is best-effort: when disabled or failing, local
// materialization proceeds without remote objects.
type CRMConfig struct {
	Enabled bool
	BaseURL string
	// Username and ApiKey authenticate the token request
	Username string
	ApiKey   string
	// RequestTimeout is the per-call timeout (seconds)
	RequestTimeout int
	// DefaultActivitySubTypeID is the CRM sub-type assigned to mirrored activities
	DefaultActivitySubTypeID int
	// DefaultOpportunityPhase and DefaultOpportunityCategory are the CRM
	// pipeline identifiers stamped on mirrored opportunities
	DefaultOpportunityPhase    int
	DefaultOpportunityCategory int
}

// SMTPConfig holds settings for the outbound email sender
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	// SendTimeout bounds a single send so one broken delivery cannot
	// stall an SLA sweep (seconds)
	SendTimeout int
}

// SLAConfig controls the escalation scanner and its scheduled jobs
type SLAConfig struct {
	// SweepCron is the cron expression for the periodic SLA sweep
	SweepCron string
	// AutoCloseCron is the cron expression for the ticket auto-close job
	AutoCloseCron string
	// JobsEnabled starts the cron scheduler; the HTTP triggers work regardless
	JobsEnabled bool
	// RenotifyIntervalHours is the minimum spacing between repeated
	// notifications for the same task and threshold. Zero restores the
	// legacy behavior of re-notifying on every sweep.
	RenotifyIntervalHours int
	// JobTimeout bounds one full sweep (seconds)
	JobTimeout int
}

type ApiKeyConfig struct {
	// Value guards the operational endpoints (SLA sweep, auto-close)
	Value string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment",
	// "vault", or "auto" (environment in development, vault otherwise)
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistPaths    []string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// RequestTimeoutDuration returns the CRM per-call timeout as duration
func (c *CRMConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// SendTimeoutDuration returns the SMTP send timeout as duration
func (s *SMTPConfig) SendTimeoutDuration() time.Duration {
	return time.Duration(s.SendTimeout) * time.Second
}

// RenotifyInterval returns the re-notification spacing as duration
func (s *SLAConfig) RenotifyInterval() time.Duration {
	return time.Duration(s.RenotifyIntervalHours) * time.Hour
}

// JobTimeoutDuration returns the sweep timeout as duration
func (s *SLAConfig) JobTimeoutDuration() time.Duration {
	return time.Duration(s.JobTimeout) * time.Second
}

// Load loads configuration from file and environment variables.
// This is a basic load that doesn't fetch secrets from vault;
// use LoadWithSecrets for full secret resolution.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if cfg.CRM.BaseURL == "" {
		cfg.CRM.BaseURL = v.GetString("CRM_BASE_URL")
	}
	if cfg.CRM.Username == "" {
		cfg.CRM.Username = v.GetString("CRM_USERNAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves sensitive values
// through the secrets provider. In development secrets come from the
// environment; in staging/production from Azure Key Vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SecretSource(cfg.Secrets.Source),
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	// Resolve each secret, keeping any value already present from the
	// environment so local development works without a vault.
	resolve := func(name string, into *string) {
		if *into != "" {
			return
		}
		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			logger.Warn("secret not resolved",
				zap.String("secret", name),
				zap.Error(err))
			return
		}
		*into = value
	}

	resolve("DATABASE-PASSWORD", &cfg.Database.Password)
	resolve("SMTP-PASSWORD", &cfg.SMTP.Password)
	resolve("CRM-API-KEY", &cfg.CRM.ApiKey)
	resolve("ADMIN-API-KEY", &cfg.ApiKey.Value)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "intelligence-api")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.dashboardBaseURL", "https://intelligence.enduser-digital.com")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "intelligence")
	v.SetDefault("database.user", "intelligence_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// CRM InCloud
	v.SetDefault("crm.enabled", false)
	v.SetDefault("crm.baseURL", "")
	v.SetDefault("crm.requestTimeout", 15)
	v.SetDefault("crm.defaultActivitySubTypeID", 63705)
	v.SetDefault("crm.defaultOpportunityPhase", 53002)
	v.SetDefault("crm.defaultOpportunityCategory", 25309)

	// SMTP
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.fromAddress", "noreply@enduser-digital.com")
	v.SetDefault("smtp.fromName", "Intelligence Platform")
	v.SetDefault("smtp.sendTimeout", 10)

	// SLA
	v.SetDefault("sla.sweepCron", "0 0 7 * * *")
	v.SetDefault("sla.autoCloseCron", "0 30 7 * * *")
	v.SetDefault("sla.jobsEnabled", true)
	v.SetDefault("sla.renotifyIntervalHours", 24)
	v.SetDefault("sla.jobTimeout", 300)

	// Secrets
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server
	v.SetDefault("server.readTimeout", 15)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS
	v.SetDefault("cors.allowedOrigins", []string{"*"})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	// Rate limiting
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requestsPerMinute", 120)
	v.SetDefault("ratelimit.whitelistPaths", []string{"/health"})
}
