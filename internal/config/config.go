package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	Savings   SavingsConfig   `yaml:"savings"`
	Loan      LoanConfig      `yaml:"loan"`
	SHU       SHUConfig       `yaml:"shu"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// StorageConfig contains proof-of-transfer file storage settings
type StorageConfig struct {
	Type         string   `yaml:"type"`       // "local"
	UploadDir    string   `yaml:"upload_dir"` // For local storage
	BaseURL      string   `yaml:"base_url"`   // Server base URL for file URLs
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// WhatsAppConfig contains the WhatsApp gateway settings
type WhatsAppConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SavingsConfig contains membership savings settings
type SavingsConfig struct {
	PrincipalAmount int64 `yaml:"principal_amount"` // one-time simpanan pokok
	MandatoryAmount int64 `yaml:"mandatory_amount"` // monthly simpanan wajib
	MandatoryDueDay int   `yaml:"mandatory_due_day"`
}

// LoanConfig contains loan pricing settings
type LoanConfig struct {
	MonthlyRatePercent float64 `yaml:"monthly_rate_percent"`
	MaxPrincipal       int64   `yaml:"max_principal"`
	MaxTenureMonths    int     `yaml:"max_tenure_months"`
}

// SHUConfig contains annual profit-sharing defaults
type SHUConfig struct {
	ReserveRatio            float64 `yaml:"reserve_ratio"`
	SavingsSharePercent     float64 `yaml:"savings_share_percent"`
	TransactionSharePercent float64 `yaml:"transaction_share_percent"`
	SocialFundPercent       float64 `yaml:"social_fund_percent"`
	ManagementPercent       float64 `yaml:"management_percent"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendInstallmentReminders     string `yaml:"send_installment_reminders"`
	SendMandatorySavingsReminder string `yaml:"send_mandatory_savings_reminder"`
	RetryUnsentWhatsApp          string `yaml:"retry_unsent_whatsapp"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
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

	// SMTP
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.SMTP.From = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// WhatsApp gateway
	if val := os.Getenv("WHATSAPP_BASE_URL"); val != "" {
		c.WhatsApp.BaseURL = val
	}
	if val := os.Getenv("WHATSAPP_API_KEY"); val != "" {
		c.WhatsApp.APIKey = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// SMTP validation
	if c.SMTP.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Storage.MaxFileSize <= 0 {
		c.Storage.MaxFileSize = 5
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "application/pdf"}
	}

	// WhatsApp gateway validation
	if c.WhatsApp.Enabled && c.WhatsApp.BaseURL == "" {
		return fmt.Errorf("whatsapp base URL is required when the gateway is enabled")
	}
	if c.WhatsApp.TimeoutSeconds == 0 {
		c.WhatsApp.TimeoutSeconds = 10
	}

	// Savings defaults (standard cooperative amounts in rupiah)
	if c.Savings.PrincipalAmount == 0 {
		c.Savings.PrincipalAmount = 100_000
	}
	if c.Savings.MandatoryAmount == 0 {
		c.Savings.MandatoryAmount = 50_000
	}
	if c.Savings.MandatoryDueDay == 0 {
		c.Savings.MandatoryDueDay = 10
	}

	// Loan defaults
	if c.Loan.MonthlyRatePercent == 0 {
		c.Loan.MonthlyRatePercent = 1.5
	}
	if c.Loan.MaxPrincipal == 0 {
		c.Loan.MaxPrincipal = 50_000_000
	}
	if c.Loan.MaxTenureMonths == 0 {
		c.Loan.MaxTenureMonths = 36
	}

	// SHU defaults
	if c.SHU.ReserveRatio == 0 {
		c.SHU.ReserveRatio = 0.20
	}
	if c.SHU.ReserveRatio < 0 || c.SHU.ReserveRatio >= 1 {
		return fmt.Errorf("invalid SHU reserve ratio: %v", c.SHU.ReserveRatio)
	}
	if c.SHU.SavingsSharePercent == 0 {
		c.SHU.SavingsSharePercent = 40
	}
	if c.SHU.TransactionSharePercent == 0 {
		c.SHU.TransactionSharePercent = 30
	}
	if c.SHU.SocialFundPercent == 0 {
		c.SHU.SocialFundPercent = 20
	}
	if c.SHU.ManagementPercent == 0 {
		c.SHU.ManagementPercent = 10
	}

	// Scheduler defaults
	if c.Scheduler.SendInstallmentReminders == "" {
		c.Scheduler.SendInstallmentReminders = "0 0 8 * * *" // 8 AM UTC daily
	}
	if c.Scheduler.SendMandatorySavingsReminder == "" {
		c.Scheduler.SendMandatorySavingsReminder = "0 0 9 1 * *" // 1st of month at 9 AM UTC
	}
	if c.Scheduler.RetryUnsentWhatsApp == "" {
		c.Scheduler.RetryUnsentWhatsApp = "0 */30 * * * *" // every 30 minutes
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

// GetServerAddress returns the HTTP server listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
