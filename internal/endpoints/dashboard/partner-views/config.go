package partnerviews

import (
	"fmt"

	"partner-dashboard/internal/common/config"
	"partner-dashboard/internal/dashboard/display"
)

type Config struct {
	Locale         string  `mapstructure:"locale"`
	CompanyAverage float64 `mapstructure:"company_average"`
}

func DefaultConfig() *Config {
	return &Config{
		Locale:         "hu",
		CompanyAverage: display.DefaultCompanyAverage,
	}
}

func (c *Config) Validate() error {
	if c.CompanyAverage < 0 {
		return fmt.Errorf("company_average must not be negative")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		if appConfig.Dashboard.Locale != "" {
			cfg.Locale = appConfig.Dashboard.Locale
		}
		if appConfig.Dashboard.CompanyAverage > 0 {
			cfg.CompanyAverage = appConfig.Dashboard.CompanyAverage
		}
	}
	return cfg
}
