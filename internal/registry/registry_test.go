package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/resource"
)

type stubHandler struct {
	name  string
	types []string
}

func (h *stubHandler) Name() string            { return h.name }
func (h *stubHandler) ResourceTypes() []string { return h.types }

func (h *stubHandler) Discover(ctx context.Context, api cloud.API, resourceType string) ([]resource.Record, error) {
	return nil, nil
}

func TestResolveAllPreservesRegistrationOrder(t *testing.T) {
	r := New(zerolog.Nop())
	r.Register(&stubHandler{name: "ec2"})
	r.Register(&stubHandler{name: "s3"})
	r.Register(&stubHandler{name: "iam"})

	handlers, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	got := make([]string, len(handlers))
	for i, h := range handlers {
		got[i] = h.Name()
	}
	want := []string{"ec2", "s3", "iam"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("handler order = %v, want %v", got, want)
		}
	}
}

func TestResolveFilterSelectsSingleHandler(t *testing.T) {
	r := New(zerolog.Nop())
	r.Register(&stubHandler{name: "ec2"})
	r.Register(&stubHandler{name: "s3"})

	handlers, err := r.Resolve("s3")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(handlers) != 1 || handlers[0].Name() != "s3" {
		t.Fatalf("Resolve(\"s3\") = %v handlers, want exactly the s3 handler", len(handlers))
	}
}

func TestResolveUnknownService(t *testing.T) {
	r := New(zerolog.Nop())
	r.Register(&stubHandler{name: "ec2"})

	_, err := r.Resolve("nosuch")
	var unknown *UnknownServiceError
	if !errors.As(err, &unknown) {
		t.Fatalf("Resolve(\"nosuch\") error = %v, want *UnknownServiceError", err)
	}
	if unknown.Service != "nosuch" {
		t.Errorf("Service = %q, want %q", unknown.Service, "nosuch")
	}
	if len(unknown.Known) != 1 || unknown.Known[0] != "ec2" {
		t.Errorf("Known = %v, want [ec2]", unknown.Known)
	}
}

func TestRegisterReplacesByName(t *testing.T) {
	r := New(zerolog.Nop())
	first := &stubHandler{name: "ec2", types: []string{"AWS::EC2::VPC"}}
	second := &stubHandler{name: "ec2", types: []string{"AWS::EC2::Instance"}}
	r.Register(first)
	r.Register(second)

	handlers, err := r.Resolve("ec2")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if handlers[0] != Handler(second) {
		t.Fatal("re-registration did not replace the existing handler")
	}
	if names := r.Names(); len(names) != 1 {
		t.Fatalf("Names() = %v, want a single entry", names)
	}
}
