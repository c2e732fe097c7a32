package cmd

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aws-graphx/internal/config"
	"aws-graphx/internal/docker"
	"aws-graphx/internal/git"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize aws-graphx configuration",
	Long: `Initialize aws-graphx configuration and settings.

Creates a .aws-graphx.yaml configuration file in the current directory
with default values and a randomly generated password. Also creates the
neo4j-data directory for Docker volume mounting.

The configuration file will be created with the following default values:
  - aws.region: us-east-1
  - discover.max_workers: 10
  - neo4j.uri: bolt://localhost:7687
  - neo4j.user: neo4j
  - neo4j.password: (randomly generated)
  - neo4j.docker_image: neo4j:community

Example:
  aws-graphx init`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.ConfigFileName + "." + config.ConfigFileType

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	cfg := config.DefaultConfig()
	if region, _ := cmd.Flags().GetString("region"); region != "" {
		cfg.AWS.Region = region
	}

	// Generate random password
	password, err := generateRandomPassword(16)
	if err != nil {
		return fmt.Errorf("failed to generate random password: %w", err)
	}
	cfg.Neo4j.Password = password

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if err := os.MkdirAll(docker.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", docker.DataDir, err)
	}

	fmt.Printf("✓ Created configuration file: %s\n\n", configPath)
	fmt.Println("Default configuration:")
	fmt.Printf("  aws.region: %s\n", cfg.AWS.Region)
	fmt.Printf("  discover.max_workers: %d\n", cfg.Discover.MaxWorkers)
	fmt.Printf("  neo4j.uri: %s\n", cfg.Neo4j.URI)
	fmt.Printf("  neo4j.user: %s\n", cfg.Neo4j.User)
	fmt.Printf("  neo4j.password: %s\n", cfg.Neo4j.Password)
	fmt.Printf("  neo4j.docker_image: %s\n\n", cfg.Neo4j.DockerImage)
	fmt.Printf("✓ Created data directory: %s\n\n", docker.DataDir)

	// Attempt to update .gitignore
	if err := git.UpdateGitignore([]string{configPath, docker.DataDir + "/"}); err != nil {
		// If gitignore update fails, print a warning but don't fail the command
		fmt.Fprintf(os.Stderr, "Warning: failed to update .gitignore: %v\n", err)
		fmt.Printf("Please manually add '%s' and '%s/' to your .gitignore file.\n", configPath, docker.DataDir)
	}

	return nil
}

// generateRandomPassword generates a random alphanumeric password of the specified length
func generateRandomPassword(length int) (string, error) {
	// Use only alphanumeric characters to avoid issues with special characters in Neo4j auth string
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	for i := range bytes {
		bytes[i] = charset[int(bytes[i])%len(charset)]
	}
	return string(bytes), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("region", "", "AWS region to record in the configuration")
}
