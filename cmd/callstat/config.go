package main

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/getsentry/callstat/internal/envutil"
)

type (
	ServiceConfig struct {
		Environment string `yaml:"environment"`
		LogLevel    string `yaml:"log_level" env:"CALLSTAT_LOG_LEVEL"`

		SentryDSN string `yaml:"sentry_dsn" env:"SENTRY_DSN"`

		ReportsBucket string `yaml:"reports_bucket" env:"CALLSTAT_REPORTS_BUCKET"`
		ReportFormat  string `yaml:"report_format" env:"CALLSTAT_REPORT_FORMAT"`
		TopN          int    `yaml:"top_n" env:"CALLSTAT_TOP_N"`
		InAppOnly     bool   `yaml:"in_app_only" env:"CALLSTAT_IN_APP_ONLY"`
	}
)

var (
	serviceConfigs = map[string]ServiceConfig{
		"production": {
			LogLevel:      "info",
			ReportsBucket: "gs://sentry-callstat-reports",
			ReportFormat:  "json",
			TopN:          100,
		},
		"development": {
			LogLevel:      "debug",
			ReportsBucket: "file:///tmp/callstat",
			ReportFormat:  "json",
		},
	}
)

// loadConfig starts from the defaults of the environment named by
// SENTRY_ENVIRONMENT, then applies the file at CALLSTAT_CONFIG if any and
// finally environment variables.
func loadConfig() (ServiceConfig, error) {
	envName := envutil.GetEnvOrFallback("SENTRY_ENVIRONMENT", "development")
	config, exists := serviceConfigs[envName]
	if !exists {
		return ServiceConfig{}, fmt.Errorf("service config for environment %v does not exist", envName)
	}
	config.Environment = envName

	var err error
	if path := envutil.GetEnvOrFallback("CALLSTAT_CONFIG", ""); path != "" {
		err = cleanenv.ReadConfig(path, &config)
	} else {
		err = cleanenv.ReadEnv(&config)
	}
	if err != nil {
		return ServiceConfig{}, err
	}
	return config, nil
}
