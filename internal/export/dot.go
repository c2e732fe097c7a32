package export

import (
	"fmt"
	"os"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"aws-graphx/internal/relate"
	"aws-graphx/internal/resource"
)

const graphName = "aws"

// WriteDOT renders the run as a Graphviz digraph. Nodes are labelled with
// the resource's short type and identifier; edges with their relationship
// type. Node ids are the composite keys, quoted for DOT.
func WriteDOT(path string, account resource.Account, records []resource.Record, edges []relate.Edge) error {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return fmt.Errorf("failed to build dot graph: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return fmt.Errorf("failed to build dot graph: %w", err)
	}

	if err := g.AddNode(graphName, quote(account.ID), map[string]string{
		"label": quote(account.Name),
		"shape": "box",
	}); err != nil {
		return fmt.Errorf("failed to add account node: %w", err)
	}
	for _, rec := range records {
		label := resource.ShortName(rec.Type) + "\\n" + rec.Identifier
		if err := g.AddNode(graphName, quote(rec.Key()), map[string]string{"label": quote(label)}); err != nil {
			return fmt.Errorf("failed to add node %s: %w", rec.Identifier, err)
		}
	}

	for _, e := range edges {
		for _, ref := range []relate.NodeRef{e.Source, e.Target} {
			if ref.Unresolved && !g.IsNode(quote(ref.Key)) {
				attrs := map[string]string{
					"label": quote(ref.Identifier),
					"style": "dashed",
				}
				if err := g.AddNode(graphName, quote(ref.Key), attrs); err != nil {
					return fmt.Errorf("failed to add placeholder node %s: %w", ref.Identifier, err)
				}
			}
			if ref.Kind == relate.KindAccount && !g.IsNode(quote(ref.Key)) {
				if err := g.AddNode(graphName, quote(ref.Key), map[string]string{
					"label": quote("Account-" + ref.Identifier),
					"shape": "box",
				}); err != nil {
					return fmt.Errorf("failed to add account node %s: %w", ref.Identifier, err)
				}
			}
		}
		if err := g.AddEdge(quote(e.Source.Key), quote(e.Target.Key), true, map[string]string{
			"label": quote(string(e.Type)),
		}); err != nil {
			return fmt.Errorf("failed to add edge %s: %w", e.Key(), err)
		}
	}

	if err := os.WriteFile(path, []byte(g.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func quote(s string) string {
	return strconv.Quote(s)
}
