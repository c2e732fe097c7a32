// Package relate derives graph edges from discovered records. All inference
// is declarative: a rule table maps property paths to typed edges, and two
// generic passes (ARN references, cross-account ownership) cover what the
// table does not name.
package relate

import (
	"fmt"
	"sort"

	"aws-graphx/internal/resource"
)

// EdgeType names a relationship class. Values become relationship types in
// the graph, so they stay in upper snake case.
type EdgeType string

const (
	Owns                       EdgeType = "OWNS"
	References                 EdgeType = "REFERENCES"
	LogsTo                     EdgeType = "LOGS_TO"
	AppliesTo                  EdgeType = "APPLIES_TO"
	HasRoute                   EdgeType = "HAS_ROUTE"
	RoutesTo                   EdgeType = "ROUTES_TO"
	HasMember                  EdgeType = "HAS_MEMBER"
	UsesParameterGroup         EdgeType = "USES_PARAMETER_GROUP"
	ConnectedViaTransitGateway EdgeType = "CONNECTED_VIA_TRANSIT_GATEWAY"
	ConnectedViaVPCPeering     EdgeType = "CONNECTED_VIA_VPC_PEERING"
)

// NodeKind distinguishes the node classes an edge can touch.
type NodeKind string

const (
	KindResource NodeKind = "resource"
	KindAccount  NodeKind = "account"
)

// NodeRef identifies one endpoint of an edge. For resources Key is the
// record's composite key; for accounts it is the account id. Unresolved
// marks a referenced resource that was not discovered in this run; the
// writer materializes those as placeholder nodes.
type NodeRef struct {
	Kind       NodeKind
	Key        string
	Type       string
	Identifier string
	Unresolved bool
}

// ResourceRef points at a discovered record.
func ResourceRef(rec resource.Record) NodeRef {
	return NodeRef{
		Kind:       KindResource,
		Key:        rec.Key(),
		Type:       rec.Type,
		Identifier: rec.Identifier,
	}
}

// AccountRef points at an account node.
func AccountRef(id string) NodeRef {
	return NodeRef{Kind: KindAccount, Key: id, Identifier: id}
}

// UnresolvedRef points at a resource that was referenced but not discovered.
// The key has no account or region scope, so repeated references to the same
// missing resource collapse onto one placeholder.
func UnresolvedRef(resourceType, identifier string) NodeRef {
	return NodeRef{
		Kind:       KindResource,
		Key:        fmt.Sprintf("unresolved|%s|%s", resourceType, identifier),
		Type:       resourceType,
		Identifier: identifier,
		Unresolved: true,
	}
}

// Edge is one directed relationship. Disambiguator separates edges of the
// same type between the same endpoints that carry distinct meanings (for
// example two routes to the same gateway).
type Edge struct {
	Source        NodeRef
	Target        NodeRef
	Type          EdgeType
	Attributes    map[string]string
	Disambiguator string
}

// Key is the composite identity an edge is deduplicated and merged on.
func (e Edge) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", e.Source.Key, e.Type, e.Target.Key, e.Disambiguator)
}

// dedupe drops duplicate edges and sorts the remainder by key. The first
// occurrence of a key wins, so callers feeding records in sorted order get
// deterministic attributes too.
func dedupe(edges []Edge) []Edge {
	seen := make(map[string]bool, len(edges))
	out := edges[:0]
	for _, e := range edges {
		k := e.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
