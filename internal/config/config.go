package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Mail      MailConfig      `yaml:"mail"`
	Storage   StorageConfig   `yaml:"storage"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string   `yaml:"host"`
	Port                int      `yaml:"port"`
	PublicURL           string   `yaml:"public_url"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// SessionConfig contains cookie signing settings
type SessionConfig struct {
	Secret          string `yaml:"secret"`
	CookieSecure    bool   `yaml:"cookie_secure"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
}

// MailConfig selects the mail transport
type MailConfig struct {
	Driver         string     `yaml:"driver"` // "smtp", "sendgrid", "ses" or "log"
	From           string     `yaml:"from"`
	FromName       string     `yaml:"from_name"`
	SupportAddress string     `yaml:"support_address"`
	SMTP           SMTPConfig `yaml:"smtp"`
	SendGridAPIKey string     `yaml:"sendgrid_api_key"`
	SES            SESConfig  `yaml:"ses"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// SESConfig contains AWS SES credentials
type SESConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	Type           string         `yaml:"type"`       // "local" or "s3"
	UploadDir      string         `yaml:"upload_dir"` // For local storage
	BaseURL        string         `yaml:"base_url"`   // Public base URL for local files
	Bucket         string         `yaml:"bucket"`
	Region         string         `yaml:"region"`
	Endpoint       string         `yaml:"endpoint"`
	PresignMinutes int            `yaml:"presign_minutes"`
	MaxUploadMB    int64          `yaml:"max_upload_mb"`
	Imgproxy       ImgproxyConfig `yaml:"imgproxy"`
}

// ImgproxyConfig contains image proxy signing settings
type ImgproxyConfig struct {
	URL  string `yaml:"url"`
	Key  string `yaml:"key"`
	Salt string `yaml:"salt"`
}

// GeocodingConfig contains the address lookup API settings
type GeocodingConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CacheTTLHours  int    `yaml:"cache_ttl_hours"`
}

// RedisConfig is optional; an empty address disables the cache
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RecalculateScores string `yaml:"recalculate_scores"`
	ReportDigest      string `yaml:"report_digest"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Session
	if val := os.Getenv("SESSION_SECRET"); val != "" {
		c.Session.Secret = val
	}

	// Mail
	if val := os.Getenv("MAIL_DRIVER"); val != "" {
		c.Mail.Driver = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Mail.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Mail.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Mail.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Mail.SMTP.Password = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Mail.SendGridAPIKey = val
	}
	if val := os.Getenv("AWS_ACCESS_KEY_ID"); val != "" {
		c.Mail.SES.AccessKey = val
	}
	if val := os.Getenv("AWS_SECRET_ACCESS_KEY"); val != "" {
		c.Mail.SES.SecretKey = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.Server.AllowedOrigins = strings.Split(val, ",")
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("STORAGE_BUCKET"); val != "" {
		c.Storage.Bucket = val
	}
	if val := os.Getenv("IMGPROXY_KEY"); val != "" {
		c.Storage.Imgproxy.Key = val
	}
	if val := os.Getenv("IMGPROXY_SALT"); val != "" {
		c.Storage.Imgproxy.Salt = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 characters")
	}
	if c.Session.SessionTTLHours == 0 {
		c.Session.SessionTTLHours = 24 * 14
	}

	switch c.Mail.Driver {
	case "", "log":
		c.Mail.Driver = "log"
	case "smtp":
		if c.Mail.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Mail.SMTP.Port <= 0 || c.Mail.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Mail.SMTP.Port)
		}
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required")
		}
	case "ses":
		if c.Mail.SES.Region == "" {
			c.Mail.SES.Region = "eu-central-1"
		}
	default:
		return fmt.Errorf("unsupported mail driver: %s", c.Mail.Driver)
	}
	if c.Mail.From == "" {
		return fmt.Errorf("mail sender address is required")
	}
	if c.Mail.SupportAddress == "" {
		c.Mail.SupportAddress = c.Mail.From
	}

	switch c.Storage.Type {
	case "", "local":
		c.Storage.Type = "local"
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
		if c.Storage.BaseURL == "" {
			c.Storage.BaseURL = c.Server.PublicURL + "/files"
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for s3 storage")
		}
		if c.Storage.Region == "" {
			c.Storage.Region = "eu-central-1"
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.PresignMinutes == 0 {
		c.Storage.PresignMinutes = 15
	}
	if c.Storage.MaxUploadMB == 0 {
		c.Storage.MaxUploadMB = 5
	}

	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = "community-platform-backend"
	}
	if c.Geocoding.TimeoutSeconds == 0 {
		c.Geocoding.TimeoutSeconds = 5
	}
	if c.Geocoding.CacheTTLHours == 0 {
		c.Geocoding.CacheTTLHours = 24 * 30
	}

	if c.Scheduler.RecalculateScores == "" {
		c.Scheduler.RecalculateScores = "0 0 3 * * *" // 3 AM UTC
	}
	if c.Scheduler.ReportDigest == "" {
		c.Scheduler.ReportDigest = "0 0 8 * * 1" // Mondays at 8 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SessionTTL returns the lifetime of a login session
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.SessionTTLHours) * time.Hour
}
