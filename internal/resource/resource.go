package resource

import (
	"fmt"
	"strings"
)

// Record is the uniform in-memory representation of one discovered AWS
// resource. Records are created by a handler during enumeration and are
// immutable afterwards; the relationship deriver and the graph writer only
// read them.
type Record struct {
	Type       string     `json:"resource_type"` // vendor-qualified, e.g. "AWS::EC2::VPC"
	Identifier string     `json:"identifier"`
	ARN        string     `json:"arn,omitempty"`
	AccountID  string     `json:"account_id"`
	Region     string     `json:"region,omitempty"` // empty for global services
	Service    string     `json:"service"`          // owning handler name
	Properties Properties `json:"properties,omitempty"`
}

// Key returns the identity of the record within one discovery run:
// (resource_type, identifier, account_id, region).
func (r Record) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.Type, r.Identifier, r.AccountID, r.Region)
}

// TypeKey returns the (resource_type, identifier) composite used for
// target resolution during relationship derivation.
func (r Record) TypeKey() string {
	return TypeKey(r.Type, r.Identifier)
}

// TypeKey builds the (resource_type, identifier) composite key.
func TypeKey(resourceType, identifier string) string {
	return resourceType + "|" + identifier
}

// ServiceOf extracts the lowercase service name from a vendor-qualified
// resource type, e.g. "AWS::EC2::Instance" -> "ec2".
func ServiceOf(resourceType string) string {
	parts := strings.Split(resourceType, "::")
	if len(parts) < 2 {
		return strings.ToLower(resourceType)
	}
	return strings.ToLower(parts[1])
}

// ShortName extracts the trailing component of a vendor-qualified resource
// type, e.g. "AWS::EC2::Instance" -> "instance".
func ShortName(resourceType string) string {
	parts := strings.Split(resourceType, "::")
	return strings.ToLower(parts[len(parts)-1])
}

// Account is the synthetic graph root for one AWS account. Every resource
// discovered for the account hangs off it via an OWNS edge.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewAccount builds the account node, defaulting the display name to the
// account id when none is configured.
func NewAccount(id, name string) Account {
	if name == "" {
		name = "Account-" + id
	}
	return Account{ID: id, Name: name}
}
