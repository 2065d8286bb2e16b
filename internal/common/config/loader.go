// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// DASHBOARD_WEBHOOK_URL overrides dashboard.webhook_url and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // environment file is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	// zero is meaningful for these, so they cannot go through applyDefaults
	v.SetDefault("mfa.cooldown", 60)
	v.SetDefault("dashboard.refresh_on_start", true)
	v.SetDefault("auth.keycloak.timeout", 10000)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known env names when the
// YAML left them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Dashboard.WebhookURL, "PARTNER_WEBHOOK_URL")

	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")

	setIfEmpty(&cfg.Auth.Keycloak.URL, "KEYCLOAK_URL")

	// Mailtrap credentials are what the hosted deployment ships with
	setIfEmpty(&cfg.Integrations.SMTP.Username, "MAILTRAP_SMTP_USER")
	setIfEmpty(&cfg.Integrations.SMTP.Password, "MAILTRAP_SMTP_PASS")
}

func setIfEmpty(field *string, envName string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envName); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "partner-dashboard"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}

	if cfg.Dashboard.RequestTimeout == 0 {
		cfg.Dashboard.RequestTimeout = 30000
	}
	if cfg.Dashboard.Locale == "" {
		cfg.Dashboard.Locale = "hu"
	}
	if cfg.Dashboard.TopN == 0 {
		cfg.Dashboard.TopN = 20
	}
	if cfg.Dashboard.DormantDays == 0 {
		cfg.Dashboard.DormantDays = 90
	}
	if cfg.Dashboard.CompanyAverage == 0 {
		cfg.Dashboard.CompanyAverage = 0.14
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Integrations.SMTP.Host == "" {
		cfg.Integrations.SMTP.Host = "sandbox.smtp.mailtrap.io"
	}
	if cfg.Integrations.SMTP.Port == 0 {
		cfg.Integrations.SMTP.Port = 2525
	}

	if cfg.MFA.CodeTTL == 0 {
		cfg.MFA.CodeTTL = 600
	}
	if cfg.MFA.FromEmail == "" {
		cfg.MFA.FromEmail = "security@umbroll.com"
	}
	if cfg.MFA.FromName == "" {
		cfg.MFA.FromName = "Umbroll Security"
	}
	if cfg.MFA.Subject == "" {
		cfg.MFA.Subject = "Umbroll MFA Kód"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Dashboard.WebhookURL == "" {
		return fmt.Errorf("dashboard.webhook_url is required")
	}
	if cfg.Dashboard.TopN < 0 {
		return fmt.Errorf("dashboard.top_n must not be negative")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.MFA.CodeTTL < 0 || cfg.MFA.Cooldown < 0 {
		return fmt.Errorf("mfa.code_ttl and mfa.cooldown must not be negative")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetSeconds converts seconds from config to time.Duration
func GetSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
