// Package graphdb persists discovered resources and derived relationships
// into Neo4j. Writes are idempotent: everything is MERGEd on a composite
// key, so re-running discovery against an unchanged account changes nothing.
package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client handles the connection and communication with a Neo4j database.
type Client struct {
	driver neo4j.DriverWithContext
	uri    string
}

// NewClient creates a new Neo4j client. The connection is verified lazily;
// call VerifyConnectivity before relying on it.
func NewClient(uri, user, pass string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Client{driver: driver, uri: uri}, nil
}

// Close gracefully shuts down the driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// VerifyConnectivity checks if a connection can be established with the
// database, wrapping failures as *ConnectionError.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return &ConnectionError{URI: c.uri, Err: err}
	}
	return nil
}

// Session opens a session usable for both reads and writes. The writer
// scopes one session per write; callers doing ad-hoc queries close it
// themselves.
func (c *Client) Session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}
