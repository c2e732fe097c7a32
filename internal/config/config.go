package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aws-graphx/internal/discovery"
)

const (
	ConfigFileName = ".aws-graphx"
	ConfigFileType = "yaml"
)

// Config holds the configuration for aws-graphx.
type Config struct {
	AWS      AWSConfig      `mapstructure:"aws"`
	Discover DiscoverConfig `mapstructure:"discover"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Output   string         `mapstructure:"output"`
	Update   bool           `mapstructure:"update"`
}

// AWSConfig holds the credentials scope of a run.
type AWSConfig struct {
	Region      string `mapstructure:"region"`
	Profile     string `mapstructure:"profile"`
	AccountName string `mapstructure:"account_name"`
}

// DiscoverConfig holds the discovery tuning knobs.
type DiscoverConfig struct {
	MaxWorkers         int      `mapstructure:"max_workers"`
	DescriptionWorkers int      `mapstructure:"description_workers"`
	RequestsPerSecond  float64  `mapstructure:"requests_per_second"`
	Service            string   `mapstructure:"service"`
	Exclude            []string `mapstructure:"exclude"`
	ResetGraph         bool     `mapstructure:"reset_graph"`
}

// Neo4jConfig holds the Neo4j connection settings.
type Neo4jConfig struct {
	URI         string `mapstructure:"uri"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DockerImage string `mapstructure:"docker_image"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Discover: DiscoverConfig{
			MaxWorkers:         discovery.DefaultMaxWorkers,
			DescriptionWorkers: discovery.DefaultDescriptionWorkers,
		},
		Neo4j: Neo4jConfig{
			URI:         "bolt://localhost:7687",
			User:        "neo4j",
			Password:    "",
			DockerImage: "neo4j:community",
		},
		Output: "",
		Update: true,
	}
}

// Validate checks the tuning knobs before a run starts.
func (c *Config) Validate() error {
	if c.AWS.Region == "" {
		return fmt.Errorf("aws region must be set")
	}
	if c.Discover.MaxWorkers < 1 || c.Discover.MaxWorkers > discovery.MaxWorkersCeiling {
		return fmt.Errorf("max workers must be between 1 and %d, got %d",
			discovery.MaxWorkersCeiling, c.Discover.MaxWorkers)
	}
	if c.Discover.DescriptionWorkers < 1 {
		return fmt.Errorf("description workers must be at least 1, got %d", c.Discover.DescriptionWorkers)
	}
	if c.Discover.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative")
	}
	return nil
}

// ExcludeSet returns the excluded resource types as a lookup set.
func (c *Config) ExcludeSet() map[string]bool {
	set := make(map[string]bool, len(c.Discover.Exclude))
	for _, t := range c.Discover.Exclude {
		set[t] = true
	}
	return set
}

// Load reads the configuration from the .aws-graphx.yaml file.
// It searches for the config file in the current directory and the home directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)

	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	defaults := DefaultConfig()
	v.SetDefault("aws.region", defaults.AWS.Region)
	v.SetDefault("discover.max_workers", defaults.Discover.MaxWorkers)
	v.SetDefault("discover.description_workers", defaults.Discover.DescriptionWorkers)
	v.SetDefault("neo4j.uri", defaults.Neo4j.URI)
	v.SetDefault("neo4j.user", defaults.Neo4j.User)
	v.SetDefault("neo4j.password", defaults.Neo4j.Password)
	v.SetDefault("neo4j.docker_image", defaults.Neo4j.DockerImage)
	v.SetDefault("update", defaults.Update)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadAndMerge loads configuration from file and merges it with CLI flags.
// Priority: flags > config file > defaults
func LoadAndMerge(cmd *cobra.Command) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("region") {
		cfg.AWS.Region, _ = cmd.Flags().GetString("region")
	}
	if cmd.Flags().Changed("profile") {
		cfg.AWS.Profile, _ = cmd.Flags().GetString("profile")
	}
	if cmd.Flags().Changed("account-name") {
		cfg.AWS.AccountName, _ = cmd.Flags().GetString("account-name")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Discover.MaxWorkers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("description-workers") {
		cfg.Discover.DescriptionWorkers, _ = cmd.Flags().GetInt("description-workers")
	}
	if cmd.Flags().Changed("rps") {
		cfg.Discover.RequestsPerSecond, _ = cmd.Flags().GetFloat64("rps")
	}
	if cmd.Flags().Changed("service") {
		cfg.Discover.Service, _ = cmd.Flags().GetString("service")
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Discover.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("reset") {
		cfg.Discover.ResetGraph, _ = cmd.Flags().GetBool("reset")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("update") {
		cfg.Update, _ = cmd.Flags().GetBool("update")
	}
	if cmd.Flags().Changed("neo4j-uri") {
		cfg.Neo4j.URI, _ = cmd.Flags().GetString("neo4j-uri")
	}
	if cmd.Flags().Changed("neo4j-user") {
		cfg.Neo4j.User, _ = cmd.Flags().GetString("neo4j-user")
	}
	if cmd.Flags().Changed("neo4j-pass") {
		cfg.Neo4j.Password, _ = cmd.Flags().GetString("neo4j-pass")
	}

	return cfg, nil
}

// Save writes the configuration to a .aws-graphx.yaml file in the current directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = fmt.Sprintf("%s.%s", ConfigFileName, ConfigFileType)
	}

	v := viper.New()
	v.Set("aws.region", cfg.AWS.Region)
	v.Set("aws.profile", cfg.AWS.Profile)
	v.Set("aws.account_name", cfg.AWS.AccountName)
	v.Set("discover.max_workers", cfg.Discover.MaxWorkers)
	v.Set("discover.description_workers", cfg.Discover.DescriptionWorkers)
	v.Set("neo4j.uri", cfg.Neo4j.URI)
	v.Set("neo4j.user", cfg.Neo4j.User)
	v.Set("neo4j.password", cfg.Neo4j.Password)
	v.Set("neo4j.docker_image", cfg.Neo4j.DockerImage)

	// Ensure the directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Ensure the config file is only readable/writable by the owner (contains secrets)
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set secure permissions on config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists in the current directory.
func Exists() bool {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(".")

	err := v.ReadInConfig()
	return err == nil
}
