package relate

import (
	"github.com/rs/zerolog"

	"aws-graphx/internal/resource"
)

// Deriver runs the inference passes over one run's records. It is pure: the
// same account and records always yield the same edge list.
type Deriver struct {
	rules []Rule
	cross []CrossAccountRule
	log   zerolog.Logger
}

// NewDeriver builds a deriver with the default rule tables.
func NewDeriver(log zerolog.Logger) *Deriver {
	return &Deriver{
		rules: defaultRules,
		cross: defaultCrossAccountRules,
		log:   log.With().Str("component", "relate").Logger(),
	}
}

// Derive produces the full edge set for a run: account ownership, the rule
// table, route targets, generic ARN references, and cross-account links.
// Records should already be sorted by key; the result is deduplicated and
// sorted by edge key.
func (d *Deriver) Derive(account resource.Account, records []resource.Record) []Edge {
	byTypeKey := make(map[string]resource.Record, len(records))
	byARN := make(map[string]resource.Record, len(records))
	for _, rec := range records {
		byTypeKey[rec.TypeKey()] = rec
		if rec.ARN != "" {
			byARN[rec.ARN] = rec
		}
	}

	accountNode := AccountRef(account.ID)
	var edges []Edge

	for _, rec := range records {
		edges = append(edges, Edge{Source: accountNode, Target: ResourceRef(rec), Type: Owns})
		edges = append(edges, d.applyRules(rec, byTypeKey, byARN)...)
		edges = append(edges, d.routeTargets(rec, byTypeKey)...)
		edges = append(edges, d.arnReferences(rec, byARN)...)
		edges = append(edges, d.crossAccount(account.ID, rec)...)
	}

	edges = dedupe(edges)
	d.log.Debug().
		Int("records", len(records)).
		Int("edges", len(edges)).
		Msg("derived relationships")
	return edges
}

// applyRules evaluates every matching table rule against one record.
func (d *Deriver) applyRules(rec resource.Record, byTypeKey, byARN map[string]resource.Record) []Edge {
	var edges []Edge
	for _, rule := range d.rules {
		if rule.SourceType != rec.Type {
			continue
		}

		var values []string
		if rule.Each {
			list, err := rec.Properties.ListAt(rule.Path)
			if err != nil {
				continue
			}
			for _, v := range list {
				if s, ok := v.(string); ok && s != "" {
					values = append(values, s)
				}
			}
		} else {
			s, err := rec.Properties.StringAt(rule.Path)
			if err != nil || s == "" {
				continue
			}
			values = []string{s}
		}

		for _, value := range values {
			target := d.resolve(rule.TargetType, value, rule.Resolve, byTypeKey, byARN)
			src, dst := ResourceRef(rec), target
			if rule.Reverse {
				src, dst = dst, src
			}
			edges = append(edges, Edge{Source: src, Target: dst, Type: rule.Edge})
		}
	}
	return edges
}

// resolve maps a property value to a node, falling back to an unresolved
// placeholder when the referenced resource was not discovered.
func (d *Deriver) resolve(targetType, value string, res Resolution, byTypeKey, byARN map[string]resource.Record) NodeRef {
	switch res {
	case ByARN:
		if rec, ok := byARN[value]; ok {
			return ResourceRef(rec)
		}
	default:
		if rec, ok := byTypeKey[resource.TypeKey(targetType, value)]; ok {
			return ResourceRef(rec)
		}
	}
	return UnresolvedRef(targetType, value)
}

// routeTargets links a route rule to the resource its traffic is sent to.
// The target type is inferred from the id prefix; "local" routes carry no
// target and emit nothing.
func (d *Deriver) routeTargets(rec resource.Record, byTypeKey map[string]resource.Record) []Edge {
	if rec.Type != "AWS::EC2::RouteRule" {
		return nil
	}
	target, err := rec.Properties.StringAt("Target")
	if err != nil || target == "" || target == "local" {
		return nil
	}

	targetType := "AWS::EC2::NetworkTarget"
	for _, m := range routeTargetTypes {
		if len(target) > len(m.prefix) && target[:len(m.prefix)] == m.prefix {
			targetType = m.typ
			break
		}
	}

	dest, _ := rec.Properties.StringAt("Destination")
	return []Edge{{
		Source:     ResourceRef(rec),
		Target:     d.resolve(targetType, target, ByIdentifier, byTypeKey, nil),
		Type:       RoutesTo,
		Attributes: map[string]string{"destination": dest},
	}}
}

// arnReferences emits a REFERENCES edge for every property value that is the
// ARN of another discovered resource. Unmatched ARNs are ignored here; only
// the rule table creates placeholders.
func (d *Deriver) arnReferences(rec resource.Record, byARN map[string]resource.Record) []Edge {
	var edges []Edge
	for path, value := range rec.Properties.Flatten() {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if _, isARN := resource.ParseARN(s); !isARN {
			continue
		}
		target, ok := byARN[s]
		if !ok || target.Key() == rec.Key() {
			continue
		}
		edges = append(edges, Edge{
			Source:        ResourceRef(rec),
			Target:        ResourceRef(target),
			Type:          References,
			Attributes:    map[string]string{"property": path},
			Disambiguator: path,
		})
	}
	return edges
}

// crossAccount links the local account node to any foreign owner named by a
// shared networking resource. Edges connect account to account; repeated
// attachments to the same peer collapse onto one edge.
func (d *Deriver) crossAccount(localAccount string, rec resource.Record) []Edge {
	var edges []Edge
	for _, rule := range d.cross {
		if rule.SourceType != rec.Type {
			continue
		}
		for _, ownerPath := range rule.OwnerPaths {
			owner, err := rec.Properties.StringAt(ownerPath)
			if err != nil || owner == "" || owner == localAccount {
				continue
			}

			attrs := make(map[string]string, len(rule.AttrPaths))
			for name, path := range rule.AttrPaths {
				if v, err := rec.Properties.StringAt(path); err == nil && v != "" {
					attrs[name] = v
				} else {
					attrs[name] = rec.Identifier
				}
			}
			d.log.Info().
				Str("resource", rec.Identifier).
				Str("peer_account", owner).
				Str("edge", string(rule.Edge)).
				Msg("cross-account connection")
			edges = append(edges, Edge{
				Source:     AccountRef(localAccount),
				Target:     AccountRef(owner),
				Type:       rule.Edge,
				Attributes: attrs,
			})
		}
	}
	return edges
}
