package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/config"
	"aws-graphx/internal/graphdb"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate aws-graphx configuration and connections",
	Long:  `Validate aws-graphx configuration and verify connections.`,
}

var checkDatabaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Check Neo4j database connectivity",
	Long: `Verify that aws-graphx can connect to the Neo4j database using
the credentials from the configuration file (.aws-graphx.yaml).

This command will:
  1. Load the configuration from .aws-graphx.yaml
  2. Attempt to connect to the Neo4j database
  3. Verify connectivity
  4. Report the connection status

Example:
  aws-graphx check database`,
	RunE: runCheckDatabase,
}

var checkAWSCmd = &cobra.Command{
	Use:   "aws",
	Short: "Check AWS credentials",
	Long: `Verify that aws-graphx can reach AWS with the configured region and
profile by resolving the caller identity.

Example:
  aws-graphx check aws`,
	RunE: runCheckAWS,
}

func runCheckDatabase(cmd *cobra.Command, args []string) error {
	// Load configuration
	log.Println("Loading configuration from .aws-graphx.yaml...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Check if config file exists
	if !config.Exists() {
		fmt.Println("⚠ Warning: No configuration file found.")
		fmt.Println("  Run 'aws-graphx init' to create one.")
		fmt.Println("  Using default values...")
		fmt.Println()
	}

	// Display connection info (without password)
	fmt.Println("Neo4j Connection Settings:")
	fmt.Printf("  URI:  %s\n", cfg.Neo4j.URI)
	fmt.Printf("  User: %s\n", cfg.Neo4j.User)
	fmt.Println()

	if cfg.Neo4j.Password == "" {
		return fmt.Errorf("neo4j password is not set in configuration file")
	}

	log.Printf("Connecting to Neo4j at %s...", cfg.Neo4j.URI)
	ctx := context.Background()

	client, err := graphdb.NewClient(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		return fmt.Errorf("failed to create neo4j client: %w", err)
	}
	defer client.Close(ctx)

	log.Println("Verifying connectivity...")
	if err := client.VerifyConnectivity(ctx); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("✓ Successfully connected to Neo4j database!")
	fmt.Println("  The database is ready to use.")

	return nil
}

func runCheckAWS(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndMerge(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("AWS Settings:")
	fmt.Printf("  Region:  %s\n", cfg.AWS.Region)
	if cfg.AWS.Profile != "" {
		fmt.Printf("  Profile: %s\n", cfg.AWS.Profile)
	}
	fmt.Println()

	ctx := context.Background()
	limiter := cloud.NewLimiter(cloud.LimiterOptions{MaxInFlight: 1}, logger)
	client, err := cloud.NewClient(ctx, cfg.AWS.Region, cfg.AWS.Profile, limiter, logger)
	if err != nil {
		return err
	}

	log.Println("Resolving caller identity...")
	accountID, err := client.CallerAccount(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve caller identity: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ AWS credentials are valid (account %s)\n", accountID)
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkDatabaseCmd)
	checkCmd.AddCommand(checkAWSCmd)

	checkAWSCmd.Flags().String("region", "us-east-1", "AWS region")
	checkAWSCmd.Flags().String("profile", "", "AWS shared config profile")
}
