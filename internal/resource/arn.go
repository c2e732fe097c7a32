package resource

import (
	"fmt"
	"strings"
)

// ARN holds the components of an Amazon Resource Name.
type ARN struct {
	Partition string
	Service   string
	Region    string
	AccountID string
	Resource  string // trailing resource part, e.g. "vpc/vpc-123" or "function:name"
}

// ParseARN splits an ARN string into its components. The second return value
// is false for anything that is not a well-formed ARN.
func ParseARN(s string) (ARN, bool) {
	if !strings.HasPrefix(s, "arn:") {
		return ARN{}, false
	}
	parts := strings.SplitN(s, ":", 6)
	if len(parts) < 6 {
		return ARN{}, false
	}
	return ARN{
		Partition: parts[1],
		Service:   parts[2],
		Region:    parts[3],
		AccountID: parts[4],
		Resource:  parts[5],
	}, true
}

// ResourceID returns the bare resource identifier of the ARN, stripping a
// leading type prefix ("vpc/vpc-123" -> "vpc-123").
func (a ARN) ResourceID() string {
	if i := strings.IndexAny(a.Resource, "/:"); i >= 0 {
		return a.Resource[i+1:]
	}
	return a.Resource
}

// ExtractARN pulls the ARN out of a property document using the common field
// names, falling back to a synthesized ARN from the resource coordinates.
// Sub-components without a natural ARN get a deterministic synthetic one so
// they can still be addressed in the graph.
func ExtractARN(props Properties, resourceType, identifier, region, accountID string) string {
	for _, field := range []string{"Arn", "ARN", "arn", "ResourceArn", "FunctionArn", "TableArn", "RoleArn", "TopicArn", "QueueArn"} {
		if v, ok := props[field]; ok {
			if s, isStr := v.(string); isStr && s != "" {
				return s
			}
		}
	}
	service := ServiceOf(resourceType)
	short := ShortName(resourceType)
	if service == "s3" && short == "bucket" {
		return fmt.Sprintf("arn:aws:s3:::%s", identifier)
	}
	if service == "iam" {
		return fmt.Sprintf("arn:aws:iam::%s:%s/%s", accountID, short, identifier)
	}
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s/%s", service, region, accountID, short, identifier)
}
