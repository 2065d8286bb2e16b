// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	Server       ServerConfig      `mapstructure:"server"`
	Dashboard    DashboardConfig   `mapstructure:"dashboard"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Auth         AuthConfig        `mapstructure:"auth"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	MFA          MFAConfig         `mapstructure:"mfa"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DashboardConfig drives the partner webhook fetch and the derived views.
type DashboardConfig struct {
	WebhookURL     string  `mapstructure:"webhook_url"`
	RequestTimeout int     `mapstructure:"request_timeout"` // milliseconds
	Locale         string  `mapstructure:"locale"`
	TopN           int     `mapstructure:"top_n"`
	DormantDays    int     `mapstructure:"dormant_days"`
	SeedFile       string  `mapstructure:"seed_file"`
	CompanyAverage float64 `mapstructure:"company_average"`
	RefreshOnStart bool    `mapstructure:"refresh_on_start"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds the identity provider used to resolve bearer tokens.
type AuthConfig struct {
	Keycloak struct {
		URL     string `mapstructure:"url"`
		Realm   string `mapstructure:"realm"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"keycloak"`
}

// IntegrationConfig holds settings for email and notification transports.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	SMTP SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	UseTLS      bool   `mapstructure:"use_tls"`
	DefaultFrom string `mapstructure:"default_from"`
}

// Configured reports whether SMTP credentials are present.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Username != "" && s.Password != ""
}

// MFAConfig holds settings for the send-mfa-code function.
type MFAConfig struct {
	CodeTTL   int    `mapstructure:"code_ttl"` // seconds
	Cooldown  int    `mapstructure:"cooldown"` // seconds, 0 disables
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
	Subject   string `mapstructure:"subject"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
