package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Email     EmailConfig     `mapstructure:"email"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Stats     StatsConfig     `mapstructure:"stats"`
}

type AppConfig struct {
	// Env is "development" or "production"; it selects the log format.
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig describes an optional Redis deployment. Redis is disabled
// when neither Addr nor Addrs is set.
type RedisConfig struct {
	// Mode is single, sentinel or cluster.
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`
	MaxRetries int      `mapstructure:"max_retries"`
	// Backoff bounds in milliseconds.
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" || len(r.Addrs) > 0
}

type OTPConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	ResendCooldown  time.Duration `mapstructure:"resend_cooldown"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"`
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`
	// MaxAttempts is the number of wrong guesses that burns a code.
	MaxAttempts int `mapstructure:"max_attempts"`
	// Pepper is mixed into stored code digests.
	Pepper string `mapstructure:"pepper"`
	// Store is "postgres" or "memory".
	Store string `mapstructure:"store"`
}

type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expiration_hrs"`
}

type AdminConfig struct {
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
	BootstrapName     string `mapstructure:"bootstrap_name"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	OTPLimit    int64         `mapstructure:"otp_limit"`
	OTPWindow   time.Duration `mapstructure:"otp_window"`
	LoginLimit  int64         `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

type StatsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// PostgresConnectionString builds a libpq key/value DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("app.env", "production")

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("server.shutdown_timeout", 15)

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("otp.ttl", "10m")
	vip.SetDefault("otp.resend_cooldown", "60s")
	vip.SetDefault("otp.cleanup_interval", "1m")
	vip.SetDefault("otp.send_timeout", "15s")
	vip.SetDefault("otp.store_timeout", "5s")
	vip.SetDefault("otp.max_attempts", 5)
	vip.SetDefault("otp.store", "postgres")

	vip.SetDefault("email.from", "Octobre Rose <noreply@ffaviron.fr>")

	vip.SetDefault("jwt.expiration_hrs", 12)

	vip.SetDefault("admin.bootstrap_name", "Administrateur")

	vip.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	vip.SetDefault("rate_limit.otp_limit", 10)
	vip.SetDefault("rate_limit.otp_window", "1m")
	vip.SetDefault("rate_limit.login_limit", 5)
	vip.SetDefault("rate_limit.login_window", "1m")

	vip.SetDefault("stats.cache_ttl", "30s")
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables win over file values.
func Load(configPath string) (*Config, error) {
	vip := viper.New()
	setDefaults(vip)

	bindings := map[string]string{
		"app.env": "APP_ENV",

		"server.port":             "SERVER_PORT",
		"server.read_timeout":     "SERVER_READ_TIMEOUT",
		"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

		"database.host":     "DATABASE_HOST",
		"database.port":     "DATABASE_PORT",
		"database.user":     "DATABASE_USER",
		"database.password": "DATABASE_PASSWORD",
		"database.dbname":   "DATABASE_DBNAME",
		"database.sslmode":  "DATABASE_SSLMODE",

		"redis.mode":        "REDIS_MODE",
		"redis.addrs":       "REDIS_ADDRS",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"redis.db":          "REDIS_DB",
		"redis.master_name": "REDIS_MASTER_NAME",

		"otp.ttl":              "OTP_TTL",
		"otp.resend_cooldown":  "OTP_RESEND_COOLDOWN",
		"otp.cleanup_interval": "OTP_CLEANUP_INTERVAL",
		"otp.send_timeout":     "OTP_SEND_TIMEOUT",
		"otp.store_timeout":    "OTP_STORE_TIMEOUT",
		"otp.max_attempts":     "OTP_MAX_ATTEMPTS",
		"otp.pepper":           "OTP_PEPPER",
		"otp.store":            "OTP_STORE",

		"email.resend_api_key": "EMAIL_RESEND_API_KEY",
		"email.from":           "EMAIL_FROM",

		"jwt.secret":         "JWT_SECRET",
		"jwt.expiration_hrs": "JWT_EXPIRATION_HRS",

		"admin.bootstrap_email":    "ADMIN_BOOTSTRAP_EMAIL",
		"admin.bootstrap_password": "ADMIN_BOOTSTRAP_PASSWORD",
		"admin.bootstrap_name":     "ADMIN_BOOTSTRAP_NAME",

		"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",

		"rate_limit.otp_limit":    "RATE_LIMIT_OTP_LIMIT",
		"rate_limit.otp_window":   "RATE_LIMIT_OTP_WINDOW",
		"rate_limit.login_limit":  "RATE_LIMIT_LOGIN_LIMIT",
		"rate_limit.login_window": "RATE_LIMIT_LOGIN_WINDOW",

		"stats.cache_ttl": "STATS_CACHE_TTL",
	}
	for key, env := range bindings {
		if err := vip.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config file %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)

	if err := cfg.Validate(os.Getenv("GIN_MODE")); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys. Outside gin debug mode secrets must be set.
func (c *Config) Validate(ginMode string) error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER)")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters (check JWT_SECRET)")
	}
	if c.OTP.TTL <= 0 || c.OTP.ResendCooldown <= 0 {
		return fmt.Errorf("otp ttl and resend cooldown must be positive")
	}
	if c.OTP.Store != "postgres" && c.OTP.Store != "memory" {
		return fmt.Errorf("unsupported otp store %q (expected postgres or memory)", c.OTP.Store)
	}

	if ginMode != "debug" {
		if c.Database.Password == "" {
			return fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD)")
		}
		if c.OTP.Pepper == "" {
			return fmt.Errorf("otp pepper is required in production mode (check OTP_PEPPER)")
		}
	}
	return nil
}

// splitList expands comma separated entries coming from env variables.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
