package sendmfacode

import (
	"fmt"
	"time"

	"partner-dashboard/internal/common/config"
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CodeTTL   time.Duration `mapstructure:"code_ttl"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
	FromEmail string        `mapstructure:"from_email"`
	FromName  string        `mapstructure:"from_name"`
	Subject   string        `mapstructure:"subject"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Timeout:   30 * time.Second,
		CodeTTL:   10 * time.Minute,
		Cooldown:  60 * time.Second,
		FromEmail: "security@umbroll.com",
		FromName:  "Umbroll Security",
		Subject:   "Umbroll MFA Kód",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CodeTTL <= 0 {
		return fmt.Errorf("code_ttl must be positive")
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from_email is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if appConfig.MFA.CodeTTL > 0 {
			cfg.CodeTTL = config.GetSeconds(appConfig.MFA.CodeTTL)
		}
		cfg.Cooldown = config.GetSeconds(appConfig.MFA.Cooldown)
		if appConfig.MFA.FromEmail != "" {
			cfg.FromEmail = appConfig.MFA.FromEmail
		}
		if appConfig.MFA.FromName != "" {
			cfg.FromName = appConfig.MFA.FromName
		}
		if appConfig.MFA.Subject != "" {
			cfg.Subject = appConfig.MFA.Subject
		}
	}

	return cfg
}
