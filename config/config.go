// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// NewConfig loads configuration from environment using viper with typed
// defaults and validation. A local .env file seeds variables that are
// not already set.
func NewConfig() (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("github.owner", "google")
	v.SetDefault("github.repo", "xls")
	v.SetDefault("github.home_org", "xlsynth")
	v.SetDefault("github.head_repo", "xlsynth/xlsynth")
	v.SetDefault("github.review_label", "reviewing internally")

	v.SetDefault("storage.driver", "csv")
	v.SetDefault("storage.csv_path", "pr_data.csv")
	v.SetDefault("storage.meta_path", "pr_data_meta.json")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db_name", "prtrack")
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("report.readme_path", "README.md")
	v.SetDefault("report.delays_path", "pr_delays.png")
	v.SetDefault("report.counts_path", "pr_counts.png")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"github.token",
		"github.owner",
		"github.repo",
		"github.home_org",
		"github.head_repo",
		"github.review_label",
		"storage.driver",
		"storage.csv_path",
		"storage.meta_path",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.db_name",
		"postgres.ssl_mode",
		"report.readme_path",
		"report.delays_path",
		"report.counts_path",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
