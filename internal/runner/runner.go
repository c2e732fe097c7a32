// Package runner wires the discovery pipeline together: configuration,
// the rate-limited cloud client, handler resolution, discovery, relationship
// derivation, the graph write, and the optional file exports.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/config"
	"aws-graphx/internal/discovery"
	"aws-graphx/internal/export"
	"aws-graphx/internal/graphdb"
	"aws-graphx/internal/handlers"
	"aws-graphx/internal/registry"
	"aws-graphx/internal/relate"
	"aws-graphx/internal/resource"
)

// Summary is what one complete run reports back to the CLI.
type Summary struct {
	RunID          string
	AccountID      string
	Resources      int
	Edges          int
	TypesSucceeded int
	TypesFailed    int
	FailedTypes    []string
	APICalls       int64
	Retries        int64
	Throttles      int64
	Write          *graphdb.WriteStats
	Duration       time.Duration
}

// Run executes one discovery run end to end. When cfg.Update is set the
// graph store is verified before any API call is made, so a bad endpoint
// fails in seconds instead of after minutes of discovery.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Summary, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Logger()

	var gdb *graphdb.Client
	if cfg.Update {
		if err := validateNeo4jConfig(&cfg.Neo4j); err != nil {
			return nil, err
		}
		var err error
		gdb, err = graphdb.NewClient(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j client: %w", err)
		}
		defer gdb.Close(ctx)

		log.Info().Str("uri", cfg.Neo4j.URI).Msg("verifying graph store connectivity")
		if err := gdb.VerifyConnectivity(ctx); err != nil {
			return nil, err
		}
	}

	limiter := cloud.NewLimiter(cloud.LimiterOptions{
		MaxInFlight:       cfg.Discover.MaxWorkers + cfg.Discover.DescriptionWorkers,
		RequestsPerSecond: cfg.Discover.RequestsPerSecond,
	}, log)
	client, err := cloud.NewClient(ctx, cfg.AWS.Region, cfg.AWS.Profile, limiter, log)
	if err != nil {
		return nil, err
	}

	accountID, err := client.CallerAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	account := resource.NewAccount(accountID, cfg.AWS.AccountName)

	reg := registry.New(log)
	handlers.Defaults(reg, handlers.Env{
		Region:    cfg.AWS.Region,
		AccountID: accountID,
		Log:       log,
	})
	selected, err := reg.Resolve(cfg.Discover.Service)
	if err != nil {
		return nil, err
	}

	result, err := discovery.Run(ctx, client, selected, discovery.Options{
		MaxWorkers:         cfg.Discover.MaxWorkers,
		DescriptionWorkers: cfg.Discover.DescriptionWorkers,
		Exclude:            cfg.ExcludeSet(),
		RunID:              runID,
	}, log)
	if err != nil {
		return nil, err
	}

	edges := relate.NewDeriver(log).Derive(account, result.Resources)

	summary := &Summary{
		RunID:          runID,
		AccountID:      accountID,
		Resources:      len(result.Resources),
		Edges:          len(edges),
		TypesSucceeded: result.TypesSucceeded,
		TypesFailed:    result.TypesFailed,
		FailedTypes:    result.FailedTypes,
	}

	if cfg.Update {
		writer := graphdb.NewWriter(gdb, graphdb.WriterOptions{RunID: runID}, log)
		stats, err := writer.Write(ctx, account, result.Resources, edges, cfg.Discover.ResetGraph)
		summary.Write = stats
		if err != nil {
			return summary, err
		}
	}

	if cfg.Output != "" {
		if err := writeExports(cfg.Output, runID, account, result.Resources, edges); err != nil {
			return summary, err
		}
		log.Info().Str("output", cfg.Output).Msg("wrote export files")
	}

	apiStats := client.Stats()
	summary.APICalls = apiStats.Calls
	summary.Retries = apiStats.Retries
	summary.Throttles = apiStats.Throttles
	summary.Duration = time.Since(start)
	return summary, nil
}

// writeExports renders the run to files. The extension picks the format;
// a path without a recognized extension gets both a .json and a .dot file.
func writeExports(path, runID string, account resource.Account, records []resource.Record, edges []relate.Edge) error {
	switch {
	case strings.HasSuffix(path, ".json"):
		return export.WriteJSON(path, runID, account, records, edges)
	case strings.HasSuffix(path, ".dot"):
		return export.WriteDOT(path, account, records, edges)
	default:
		if err := export.WriteJSON(path+".json", runID, account, records, edges); err != nil {
			return err
		}
		return export.WriteDOT(path+".dot", account, records, edges)
	}
}

func validateNeo4jConfig(cfg *config.Neo4jConfig) error {
	if cfg.URI == "" || cfg.User == "" || cfg.Password == "" {
		return fmt.Errorf("neo4j-uri, neo4j-user, and neo4j-pass are required when updating the graph. Please configure them in .aws-graphx.yaml or pass them as flags")
	}
	return nil
}
