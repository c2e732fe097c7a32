// Package export renders a discovery run to files for use outside the graph
// store: a JSON document of the full inventory and a DOT graph for quick
// visualization.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"aws-graphx/internal/relate"
	"aws-graphx/internal/resource"
)

// Document is the JSON export shape.
type Document struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Account     resource.Account  `json:"account"`
	Resources   []resource.Record `json:"resources"`
	Edges       []EdgeDoc         `json:"edges"`
}

// EdgeDoc is one relationship in the JSON export.
type EdgeDoc struct {
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// WriteJSON renders the run to an indented JSON file.
func WriteJSON(path, runID string, account resource.Account, records []resource.Record, edges []relate.Edge) error {
	doc := Document{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Account:     account,
		Resources:   records,
		Edges:       make([]EdgeDoc, 0, len(edges)),
	}
	for _, e := range edges {
		doc.Edges = append(doc.Edges, EdgeDoc{
			Source:     e.Source.Key,
			Target:     e.Target.Key,
			Type:       string(e.Type),
			Attributes: e.Attributes,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
