package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aws-graphx/internal/config"
	"aws-graphx/internal/runner"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover AWS resources and update the Neo4j graph",
	Long: `aws-graphx discover enumerates the resources of the current AWS account
through the Cloud Control API, derives relationships between them, and merges
the result into the configured Neo4j database.

The write is idempotent: re-running discovery against an unchanged account
leaves the graph unchanged. Cross-account transit gateway attachments and VPC
peering connections are recorded as edges between account nodes.

Examples:
  # Discover everything in the configured region and update Neo4j
  aws-graphx discover

  # Discover only EC2, with more workers, into a fresh account subgraph
  aws-graphx discover --service ec2 --workers 20 --reset

  # Skip the database and export the inventory to files instead
  aws-graphx discover --update=false --output infra.json`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndMerge(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("\nDiscovery complete for account %s (run %s)\n", summary.AccountID, summary.RunID)
	fmt.Printf("  Resources:       %d\n", summary.Resources)
	fmt.Printf("  Relationships:   %d\n", summary.Edges)
	fmt.Printf("  Resource types:  %d ok, %d failed\n", summary.TypesSucceeded, summary.TypesFailed)
	if len(summary.FailedTypes) > 0 {
		fmt.Printf("  Failed types:    %s\n", strings.Join(summary.FailedTypes, ", "))
	}
	fmt.Printf("  API calls:       %d (%d retries, %d throttles)\n", summary.APICalls, summary.Retries, summary.Throttles)
	if summary.Write != nil {
		fmt.Printf("  Graph:           %d nodes created, %d merged; %d edges created, %d merged\n",
			summary.Write.NodesCreated, summary.Write.NodesMerged,
			summary.Write.EdgesCreated, summary.Write.EdgesMerged)
	}
	fmt.Printf("  Duration:        %s\n", summary.Duration.Round(time.Millisecond))
	return nil
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().String("region", "us-east-1", "AWS region to discover")
	discoverCmd.Flags().String("profile", "", "AWS shared config profile")
	discoverCmd.Flags().String("account-name", "", "Display name for the account node")
	discoverCmd.Flags().Int("workers", 10, "Concurrent resource-type workers (1-50)")
	discoverCmd.Flags().Int("description-workers", 5, "Concurrent detail-fetch workers")
	discoverCmd.Flags().Float64("rps", 0, "Steady-state API requests per second (0 disables)")
	discoverCmd.Flags().String("service", "", "Discover a single service (e.g. ec2)")
	discoverCmd.Flags().StringSlice("exclude", nil, "Resource types to skip (repeatable)")
	discoverCmd.Flags().Bool("reset", false, "Remove the account's existing graph state first")
	discoverCmd.Flags().String("output", "", "Write the inventory to a .json or .dot file")
	discoverCmd.Flags().Bool("update", true, "Update the Neo4j database")
	discoverCmd.Flags().String("neo4j-uri", "bolt://localhost:7687", "URI for the Neo4j database")
	discoverCmd.Flags().String("neo4j-user", "neo4j", "Username for the Neo4j database")
	discoverCmd.Flags().String("neo4j-pass", "", "Password for the Neo4j database")
}
