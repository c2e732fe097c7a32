// Package registry holds the catalog of service handlers. Handlers are
// registered explicitly at process start; the orchestrator resolves them
// from here, applying the optional service filter.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/resource"
)

// Handler is one pluggable discovery unit. A handler owns a logical service
// and knows how to enumerate and fetch the resource types it declares.
// Handlers are stateless per invocation; Discover may be called concurrently
// for different resource types.
type Handler interface {
	// Name is the logical service name, e.g. "ec2".
	Name() string

	// ResourceTypes lists the vendor-qualified types this handler covers.
	ResourceTypes() []string

	// Discover enumerates and normalizes all resources of one type.
	Discover(ctx context.Context, api cloud.API, resourceType string) ([]resource.Record, error)
}

// Describer is an optional second-level capability: handlers that implement
// it get one detail sub-task per discovered record, scheduled on the
// separate description worker pool. Describe returns additional records
// (sub-components, enriched copies); returning nothing is fine.
type Describer interface {
	Describe(ctx context.Context, api cloud.API, rec resource.Record) ([]resource.Record, error)
}

// UnknownServiceError reports a filter that names no registered handler.
// This is a configuration failure: the run aborts before any discovery.
type UnknownServiceError struct {
	Service string
	Known   []string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q (registered: %v)", e.Service, e.Known)
}

// Registry maps service names to handlers, preserving registration order so
// an unfiltered resolve is deterministic.
type Registry struct {
	mu       sync.Mutex
	order    []string
	handlers map[string]Handler
	log      zerolog.Logger
}

// New returns an empty registry.
func New(log zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log.With().Str("component", "registry").Logger(),
	}
}

// Register adds a handler. Registration is idempotent by service name:
// re-registering replaces the prior entry in place (last registration wins)
// and is logged, never silently ambiguous.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := h.Name()
	if _, exists := r.handlers[name]; exists {
		r.log.Warn().Str("service", name).Msg("service already registered, replacing")
	} else {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
	r.log.Debug().Str("service", name).Int("resource_types", len(h.ResourceTypes())).Msg("registered service handler")
}

// Resolve returns the handlers selected by filter. An empty filter returns
// all handlers in registration order; otherwise the single named handler, or
// an *UnknownServiceError.
func (r *Registry) Resolve(filter string) ([]Handler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if filter == "" {
		all := make([]Handler, 0, len(r.order))
		for _, name := range r.order {
			all = append(all, r.handlers[name])
		}
		return all, nil
	}

	h, ok := r.handlers[filter]
	if !ok {
		known := make([]string, len(r.order))
		copy(known, r.order)
		return nil, &UnknownServiceError{Service: filter, Known: known}
	}
	return []Handler{h}, nil
}

// Names lists the registered service names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
