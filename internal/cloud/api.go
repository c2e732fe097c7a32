package cloud

import "context"

// Description is one raw item returned by the control plane. Properties is
// the undecoded JSON document; handlers parse it into resource.Properties.
type Description struct {
	Identifier string
	Properties string
}

// API is the Cloud API collaborator consumed by handlers. The control plane
// applies its own pagination; implementations surface throttling and
// permanent failures through the error taxonomy in this package.
type API interface {
	// ListResources enumerates identifiers (with summary properties) of all
	// resources of the given vendor-qualified type.
	ListResources(ctx context.Context, typeName string) ([]Description, error)

	// GetResource fetches the full property document of a single resource.
	GetResource(ctx context.Context, typeName, identifier string) (Description, error)

	// CallerAccount resolves the account id of the active credentials.
	CallerAccount(ctx context.Context) (string, error)
}
