package graphdb

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"aws-graphx/internal/relate"
	"aws-graphx/internal/resource"
)

// DefaultBatchSize is how many rows one UNWIND statement carries.
const DefaultBatchSize = 200

// WriterOptions configures the graph writer.
type WriterOptions struct {
	// BatchSize bounds rows per statement. Zero selects the default.
	BatchSize int

	// RunID is stamped on every node touched by this run.
	RunID string
}

// WriteStats summarizes one write: how much was newly created versus merged
// into existing graph state, and how many batches it took.
type WriteStats struct {
	NodesCreated int
	NodesMerged  int
	EdgesCreated int
	EdgesMerged  int
	Batches      int
}

// Writer persists one discovery run. All statements MERGE on composite keys;
// running the same input twice leaves the graph unchanged.
type Writer struct {
	client *Client
	opts   WriterOptions
	log    zerolog.Logger
}

// NewWriter builds a writer on an established client.
func NewWriter(client *Client, opts WriterOptions, log zerolog.Logger) *Writer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Writer{
		client: client,
		opts:   opts,
		log:    log.With().Str("component", "graphdb").Logger(),
	}
}

// Write persists the account, its resources, and the derived edges. With
// reset set, graph state previously owned by the account is removed first,
// scoped so other accounts in a shared database are untouched. A mid-write
// failure returns a *WriteError naming what was already committed alongside
// the partial stats.
func (w *Writer) Write(ctx context.Context, account resource.Account, records []resource.Record, edges []relate.Edge, reset bool) (*WriteStats, error) {
	session := w.client.Session(ctx)
	defer session.Close(ctx)

	stats := &WriteStats{}

	if reset {
		if err := w.resetAccount(ctx, session, account.ID); err != nil {
			return stats, err
		}
	}
	if err := w.mergeAccount(ctx, session, account, stats); err != nil {
		return stats, err
	}
	if err := w.mergeForeignAccounts(ctx, session, account.ID, edges, stats); err != nil {
		return stats, err
	}
	if err := w.mergeResources(ctx, session, records, stats); err != nil {
		return stats, err
	}
	if err := w.mergePlaceholders(ctx, session, edges, stats); err != nil {
		return stats, err
	}
	if err := w.mergeEdges(ctx, session, account.ID, edges, stats); err != nil {
		return stats, err
	}

	w.log.Info().
		Int("nodes_created", stats.NodesCreated).
		Int("nodes_merged", stats.NodesMerged).
		Int("edges_created", stats.EdgesCreated).
		Int("edges_merged", stats.EdgesMerged).
		Int("batches", stats.Batches).
		Msg("graph write complete")
	return stats, nil
}

// resetAccount removes everything the account owns, then the account node
// itself. Placeholder nodes hanging off deleted resources go with them via
// DETACH DELETE.
func (w *Writer) resetAccount(ctx context.Context, session neo4j.SessionWithContext, accountID string) error {
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, query := range resetQueries() {
			if _, err := tx.Run(ctx, query, map[string]any{"id": accountID}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return &WriteError{Err: fmt.Errorf("reset of account %s: %w", accountID, err)}
	}
	w.log.Info().Str("account_id", accountID).Msg("reset account graph state")
	return nil
}

func (w *Writer) mergeAccount(ctx context.Context, session neo4j.SessionWithContext, account resource.Account, stats *WriteStats) error {
	created, _, err := w.run(ctx, session, mergeAccountQuery(), map[string]any{
		"id":     account.ID,
		"name":   account.Name,
		"run_id": w.opts.RunID,
	})
	if err != nil {
		return &WriteError{Committed: 0, Pending: 1, Err: err}
	}
	stats.NodesCreated += created
	if created == 0 {
		stats.NodesMerged++
	}
	stats.Batches++
	return nil
}

func (w *Writer) mergeResources(ctx context.Context, session neo4j.SessionWithContext, records []resource.Record, stats *WriteStats) error {
	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		rows[i] = resourceRow(rec, w.opts.RunID)
	}

	committed := 0
	for batchNo, batch := range chunk(rows, w.opts.BatchSize) {
		created, _, err := w.run(ctx, session, mergeResourcesQuery(), map[string]any{"rows": batch})
		if err != nil {
			return &WriteError{
				Batch:     batchNo,
				Committed: committed,
				Pending:   len(rows) - committed,
				Err:       err,
			}
		}
		committed += len(batch)
		stats.NodesCreated += created
		stats.NodesMerged += len(batch) - created
		stats.Batches++
	}
	return nil
}

// mergeForeignAccounts materializes account nodes for cross-account edge
// endpoints. Without them the edge statements would MATCH nothing and the
// cross-account edges would be dropped without error.
func (w *Writer) mergeForeignAccounts(ctx context.Context, session neo4j.SessionWithContext, localID string, edges []relate.Edge, stats *WriteStats) error {
	rows := foreignAccountRows(localID, edges)
	committed := 0
	for batchNo, batch := range chunk(rows, w.opts.BatchSize) {
		created, _, err := w.run(ctx, session, mergeForeignAccountsQuery(), map[string]any{"rows": batch})
		if err != nil {
			return &WriteError{
				Batch:     batchNo,
				Committed: committed,
				Pending:   len(rows) - committed,
				Err:       err,
			}
		}
		committed += len(batch)
		stats.NodesCreated += created
		stats.NodesMerged += len(batch) - created
		stats.Batches++
	}
	return nil
}

// mergePlaceholders materializes nodes for edge endpoints that reference
// undiscovered resources. ON CREATE only: a later run that discovers the
// real resource under the same key is never downgraded back to a stub.
func (w *Writer) mergePlaceholders(ctx context.Context, session neo4j.SessionWithContext, edges []relate.Edge, stats *WriteStats) error {
	seen := make(map[string]bool)
	var rows []map[string]any
	for _, e := range edges {
		for _, ref := range []relate.NodeRef{e.Source, e.Target} {
			if !ref.Unresolved || seen[ref.Key] {
				continue
			}
			seen[ref.Key] = true
			rows = append(rows, map[string]any{
				"key":           ref.Key,
				"resource_type": ref.Type,
				"identifier":    ref.Identifier,
			})
		}
	}

	committed := 0
	for batchNo, batch := range chunk(rows, w.opts.BatchSize) {
		created, _, err := w.run(ctx, session, mergePlaceholdersQuery(), map[string]any{"rows": batch})
		if err != nil {
			return &WriteError{
				Batch:     batchNo,
				Committed: committed,
				Pending:   len(rows) - committed,
				Err:       err,
			}
		}
		committed += len(batch)
		stats.NodesCreated += created
		stats.NodesMerged += len(batch) - created
		stats.Batches++
	}
	return nil
}

// mergeEdges writes the relationships, one statement per edge type and
// endpoint shape since Cypher cannot parameterize relationship types.
func (w *Writer) mergeEdges(ctx context.Context, session neo4j.SessionWithContext, accountID string, edges []relate.Edge, stats *WriteStats) error {
	groups := groupEdges(edges)
	committed := 0
	total := len(edges)

	for _, g := range groups {
		query, err := mergeEdgesQuery(g.edgeType, g.sourceKind, g.targetKind)
		if err != nil {
			return &WriteError{Committed: committed, Pending: total - committed, Err: err}
		}
		for batchNo, batch := range chunk(g.rows, w.opts.BatchSize) {
			_, relCreated, err := w.run(ctx, session, query, map[string]any{"rows": batch})
			if err != nil {
				return &WriteError{
					Batch:     batchNo,
					Committed: committed,
					Pending:   total - committed,
					Err:       err,
				}
			}
			committed += len(batch)
			stats.EdgesCreated += relCreated
			stats.EdgesMerged += len(batch) - relCreated
			stats.Batches++
		}
	}
	return nil
}

// run executes one statement and returns the created-node and
// created-relationship counters from the result summary.
func (w *Writer) run(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]any) (int, int, error) {
	summary, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return 0, 0, err
	}
	counters := summary.(neo4j.ResultSummary).Counters()
	return counters.NodesCreated(), counters.RelationshipsCreated(), nil
}

var edgeTypePattern = regexp.MustCompile(`^[A-Z][A-Z_]*$`)

// resetQueries returns the statements that clear one account's graph state.
func resetQueries() []string {
	return []string{
		"MATCH (a:Account {id: $id})-[:OWNS]->(n:Resource) DETACH DELETE n",
		"MATCH (a:Account {id: $id}) DETACH DELETE a",
	}
}

func mergeAccountQuery() string {
	return "MERGE (a:Account {id: $id}) SET a.name = $name, a.last_run_id = $run_id, a.foreign = false"
}

func mergeForeignAccountsQuery() string {
	return "UNWIND $rows AS row MERGE (a:Account {id: row.id}) ON CREATE SET a.foreign = true"
}

func mergeResourcesQuery() string {
	return "UNWIND $rows AS row MERGE (n:Resource {key: row.key}) SET n = row.props, n.key = row.key"
}

func mergePlaceholdersQuery() string {
	return "UNWIND $rows AS row MERGE (n:Resource {key: row.key}) " +
		"ON CREATE SET n.resource_type = row.resource_type, n.identifier = row.identifier, n.unresolved = true"
}

// mergeEdgesQuery builds the statement for one edge group. The relationship
// type is validated before interpolation since it cannot be a parameter.
func mergeEdgesQuery(edgeType relate.EdgeType, sourceKind, targetKind relate.NodeKind) (string, error) {
	if !edgeTypePattern.MatchString(string(edgeType)) {
		return "", fmt.Errorf("invalid edge type %q", edgeType)
	}
	return fmt.Sprintf(
		"UNWIND $rows AS row MATCH %s MATCH %s MERGE (a)-[r:%s {key: row.key}]->(b) SET r += row.attrs",
		nodePattern("a", sourceKind, "row.source"),
		nodePattern("b", targetKind, "row.target"),
		edgeType,
	), nil
}

func nodePattern(binding string, kind relate.NodeKind, param string) string {
	if kind == relate.KindAccount {
		return fmt.Sprintf("(%s:Account {id: %s})", binding, param)
	}
	return fmt.Sprintf("(%s:Resource {key: %s})", binding, param)
}

// resourceRow builds the UNWIND row for one record: flattened properties
// with the identity columns layered on top so they always win.
func resourceRow(rec resource.Record, runID string) map[string]any {
	props := rec.Properties.Flatten()
	props["key"] = rec.Key()
	props["resource_type"] = rec.Type
	props["identifier"] = rec.Identifier
	props["arn"] = rec.ARN
	props["account_id"] = rec.AccountID
	props["region"] = rec.Region
	props["service"] = rec.Service
	props["unresolved"] = false
	props["last_run_id"] = runID
	return map[string]any{"key": rec.Key(), "props": props}
}

// foreignAccountRows collects the account endpoints of the edges other than
// the local account, deduplicated and sorted. These are the peer accounts of
// cross-account edges; each needs a node before the edge statements run.
func foreignAccountRows(localID string, edges []relate.Edge) []map[string]any {
	seen := map[string]bool{localID: true}
	var ids []string
	for _, e := range edges {
		for _, ref := range []relate.NodeRef{e.Source, e.Target} {
			if ref.Kind != relate.KindAccount || seen[ref.Key] {
				continue
			}
			seen[ref.Key] = true
			ids = append(ids, ref.Key)
		}
	}
	sort.Strings(ids)
	rows := make([]map[string]any, len(ids))
	for i, id := range ids {
		rows[i] = map[string]any{"id": id}
	}
	return rows
}

type edgeGroup struct {
	edgeType   relate.EdgeType
	sourceKind relate.NodeKind
	targetKind relate.NodeKind
	rows       []map[string]any
}

// groupEdges splits edges by the (type, endpoint kinds) triple each needs
// its own statement for, in deterministic order.
func groupEdges(edges []relate.Edge) []edgeGroup {
	byKey := make(map[string]*edgeGroup)
	for _, e := range edges {
		k := string(e.Type) + "|" + string(e.Source.Kind) + "|" + string(e.Target.Kind)
		g, ok := byKey[k]
		if !ok {
			g = &edgeGroup{edgeType: e.Type, sourceKind: e.Source.Kind, targetKind: e.Target.Kind}
			byKey[k] = g
		}
		attrs := make(map[string]any, len(e.Attributes))
		for name, v := range e.Attributes {
			attrs[name] = v
		}
		g.rows = append(g.rows, map[string]any{
			"source": e.Source.Key,
			"target": e.Target.Key,
			"key":    e.Key(),
			"attrs":  attrs,
		})
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	groups := make([]edgeGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, *byKey[k])
	}
	return groups
}

// chunk splits rows into batches of at most size.
func chunk(rows []map[string]any, size int) [][]map[string]any {
	var batches [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
