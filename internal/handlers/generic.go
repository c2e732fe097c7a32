package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/resource"
)

// Env carries the run-scoped facts every handler needs to normalize records.
type Env struct {
	Region    string
	AccountID string
	Log       zerolog.Logger
}

// regionFor returns the region to stamp on records of a service. Global
// services carry no region.
func (e Env) regionFor(service string) string {
	if IsGlobal(service) {
		return ""
	}
	return e.Region
}

// Generic is the default handler: list every catalogued type of a service
// and normalize the raw descriptions into records. Services that need
// special shaping embed it.
type Generic struct {
	service string
	types   []string
	env     Env
}

// NewGeneric builds a handler for one catalogued service.
func NewGeneric(service string, env Env) *Generic {
	return &Generic{
		service: service,
		types:   TypesFor(service),
		env:     env,
	}
}

func (g *Generic) Name() string { return g.service }

func (g *Generic) ResourceTypes() []string { return g.types }

// Discover lists all resources of one type and normalizes them. The error
// return covers the whole type: a failed list fails the type, not the run.
func (g *Generic) Discover(ctx context.Context, api cloud.API, resourceType string) ([]resource.Record, error) {
	descs, err := api.ListResources(ctx, resourceType)
	if err != nil {
		return nil, err
	}

	records := make([]resource.Record, 0, len(descs))
	for _, d := range descs {
		records = append(records, g.normalize(resourceType, d))
	}
	g.env.Log.Debug().
		Str("service", g.service).
		Str("resource_type", resourceType).
		Int("count", len(records)).
		Msg("discovered resources")
	return records, nil
}

// normalize turns one raw description into a record with parsed properties
// and a resolved or synthesized ARN.
func (g *Generic) normalize(resourceType string, d cloud.Description) resource.Record {
	props := resource.ParseProperties(d.Properties)
	region := g.env.regionFor(g.service)
	return resource.Record{
		Type:       resourceType,
		Identifier: d.Identifier,
		ARN:        resource.ExtractARN(props, resourceType, d.Identifier, region, g.env.AccountID),
		AccountID:  g.env.AccountID,
		Region:     region,
		Service:    g.service,
		Properties: props,
	}
}
