// Package config provides application configuration management using Viper.
// Values come from an optional config.yaml, then a .env file loaded through
// godotenv, then APP_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "qna-development-secret-change-me-now"

// Config holds all application configuration / Contient toute la configuration de l'application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Environment   string              `mapstructure:"environment"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Backup        BackupConfig        `mapstructure:"backup"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Security      SecurityConfig      `mapstructure:"security"`
	PasswordReset PasswordResetConfig `mapstructure:"password_reset"`
	Cors          CorsConfig          `mapstructure:"cors"`
	RateLimiter   RateLimiterConfig   `mapstructure:"rate_limiter"`
	SMTP          SMTPConfig          `mapstructure:"smtp"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Seed          SeedConfig          `mapstructure:"seed"`
}

// ServerConfig holds server configuration / Configuration serveur
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // Per-request deadline / Délai par requête
	FrontendURL    string        `mapstructure:"frontend_url"`
}

// DatabaseConfig holds database-specific configuration / Configuration de la base de données
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // "sqlite", "mysql" or "postgres"
	DSN             string        `mapstructure:"dsn"`
	MigrationsPath  string        `mapstructure:"migrations_path"` // Empty uses the embedded migrations
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// BackupConfig holds database backup configuration / Configuration des sauvegardes de la base de données
type BackupConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Interval      time.Duration `mapstructure:"interval"`
	Path          string        `mapstructure:"path"`
	RetentionDays int           `mapstructure:"retention_days"`
}

// AuthConfig holds JWT configuration / Configuration JWT
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	Issuer               string        `mapstructure:"issuer"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
}

// SecurityConfig holds security settings / Paramètres de sécurité
type SecurityConfig struct {
	MaxFailedAttempts int           `mapstructure:"max_failed_attempts"`
	LockoutDuration   time.Duration `mapstructure:"lockout_duration"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// PasswordResetConfig holds reset code settings / Paramètres du code de réinitialisation
type PasswordResetConfig struct {
	CodeTTL time.Duration `mapstructure:"code_ttl"`
}

// CorsConfig holds CORS configuration / Configuration CORS
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimiterConfig holds rate limiter configuration / Configuration limiteur de débit
type RateLimiterConfig struct {
	RPS       float64 `mapstructure:"rps"`
	Burst     int     `mapstructure:"burst"`
	AuthRPS   float64 `mapstructure:"auth_rps"` // Stricter bucket for login and reset routes
	AuthBurst int     `mapstructure:"auth_burst"`
	Enabled   bool    `mapstructure:"enabled"`
}

// SMTPConfig holds SMTP server configuration / Configuration serveur SMTP
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LoggingConfig holds logging configuration / Configuration logging
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// CacheConfig holds form cache settings / Paramètres du cache des formulaires
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // 0 disables the cache
}

// SeedConfig controls default account seeding / Contrôle la création des comptes par défaut
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// IsProduction checks if environment is production / Vérifie si l'environnement est production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment checks if environment is development / Vérifie si l'environnement est development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadEnvFile loads a .env file; a missing file is not an error / Charge un fichier .env, absent toléré
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("environment", "development")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "qna.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	v.SetDefault("database.migrations_path", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.issuer", "qna")
	v.SetDefault("auth.access_token_duration", "15m")
	v.SetDefault("auth.refresh_token_duration", "720h")

	v.SetDefault("security.max_failed_attempts", 5)
	v.SetDefault("security.lockout_duration", "15m")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.trusted_proxies", []string{}) // Proxy headers are ignored unless configured

	v.SetDefault("password_reset.code_ttl", "15m")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("rate_limiter.rps", 10)
	v.SetDefault("rate_limiter.burst", 20)
	v.SetDefault("rate_limiter.auth_rps", 0.2)
	v.SetDefault("rate_limiter.auth_burst", 5)
	v.SetDefault("rate_limiter.enabled", true)

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 1025)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@qna.local")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("backup.path", "./backups")
	v.SetDefault("backup.retention_days", 7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("seed.enabled", true)
}

// LoadConfig loads configuration from .env, YAML and env vars / Charge la config depuis .env, YAML et variables d'env
func LoadConfig(envFile string) (*Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by deployments / Noms sans préfixe utilisés en déploiement
	_ = v.BindEnv("auth.jwt_secret", "APP_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("database.dsn", "APP_DATABASE_DSN", "DATABASE_DSN")
	_ = v.BindEnv("smtp.username", "APP_SMTP_USERNAME", "SMTP_USERNAME")
	_ = v.BindEnv("smtp.password", "APP_SMTP_PASSWORD", "SMTP_PASSWORD")

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates configuration / Valide la configuration
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAuth,
		c.validateRateLimiter,
		c.validatePasswordReset,
		c.validateCache,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	validDBTypes := []string{"sqlite", "sqlite3", "mysql", "postgres", "postgresql", ""}
	dbType := strings.ToLower(c.Database.Type)

	if !slices.Contains(validDBTypes, dbType) {
		return errors.New("database.type must be one of: sqlite, mysql, postgres")
	}

	if c.IsProduction() && c.Database.DSN == "" {
		return errors.New("database.dsn is required in production")
	}

	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("auth.jwt_secret must be ≥32 chars in production")
		}
		if c.Auth.JWTSecret == defaultJWTSecret {
			return errors.New("auth.jwt_secret cannot use default value in production - set JWT_SECRET environment variable")
		}
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("auth.access_token_duration must be positive")
	}
	if c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("auth.refresh_token_duration must be positive")
	}

	return nil
}

func (c *Config) validateRateLimiter() error {
	if !c.RateLimiter.Enabled {
		return nil
	}

	if c.RateLimiter.RPS <= 0 {
		return errors.New("rate_limiter.rps must be positive when enabled")
	}
	if c.RateLimiter.Burst <= 0 {
		return errors.New("rate_limiter.burst must be positive when enabled")
	}
	if c.RateLimiter.AuthRPS < 0 || c.RateLimiter.AuthBurst < 0 {
		return errors.New("rate_limiter.auth_rps and auth_burst must not be negative")
	}

	return nil
}

func (c *Config) validatePasswordReset() error {
	if c.PasswordReset.CodeTTL <= 0 {
		return errors.New("password_reset.code_ttl must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	return nil
}
