package config

import (
	"errors"
	"fmt"
)

type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Report   ReportConfig   `mapstructure:"report"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type GitHubConfig struct {
	Token string `mapstructure:"token"`
	// Owner/Repo name the upstream repository whose PRs are tracked.
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
	// HomeOrg is the organization whose confirmed members count as the
	// home side.
	HomeOrg string `mapstructure:"home_org"`
	// HeadRepo filters records to PRs originating from this fork.
	HeadRepo string `mapstructure:"head_repo"`
	// ReviewLabel marks the start of internal review when applied.
	ReviewLabel string `mapstructure:"review_label"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // csv | postgres
	CSVPath  string `mapstructure:"csv_path"`
	MetaPath string `mapstructure:"meta_path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type ReportConfig struct {
	ReadmePath string `mapstructure:"readme_path"`
	DelaysPath string `mapstructure:"delays_path"`
	CountsPath string `mapstructure:"counts_path"`
}

func (c *Config) Validate() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return errors.New("github.owner and github.repo must be set")
	}
	switch c.Storage.Driver {
	case "csv", "postgres":
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}

// UpstreamRepo is the owner/repo slug of the tracked repository.
func (c *Config) UpstreamRepo() string {
	return c.GitHub.Owner + "/" + c.GitHub.Repo
}

// PostgresDSN assembles the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}
