package handlers

import (
	"context"
	"fmt"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/resource"
)

// DBClusterMemberType is the synthetic type for one instance's membership in
// an RDS cluster. Membership carries state of its own (writer role, promotion
// tier) that belongs to neither the cluster nor the instance record.
const DBClusterMemberType = "AWS::RDS::DBClusterMember"

// RDS extends the generic handler with cluster membership expansion. The
// cluster document embeds its member list; each member becomes a record of
// its own, pointing back at the cluster and at the instance.
type RDS struct {
	*Generic
}

// NewRDS builds the rds handler.
func NewRDS(env Env) *RDS {
	return &RDS{Generic: NewGeneric("rds", env)}
}

// Describe expands a DB cluster's embedded member list into synthetic
// membership records. Other RDS types need no detail pass.
func (h *RDS) Describe(ctx context.Context, api cloud.API, rec resource.Record) ([]resource.Record, error) {
	if rec.Type != "AWS::RDS::DBCluster" {
		return nil, nil
	}

	desc, err := api.GetResource(ctx, rec.Type, rec.Identifier)
	if err != nil {
		return nil, err
	}
	props := resource.ParseProperties(desc.Properties)

	members, err := props.ListAt("DBClusterMembers")
	if err != nil {
		return nil, nil
	}

	records := make([]resource.Record, 0, len(members))
	for _, raw := range members {
		member, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		instanceID, _ := member["DBInstanceIdentifier"].(string)
		if instanceID == "" {
			continue
		}
		records = append(records, h.clusterMember(rec, instanceID, member))
	}
	h.env.Log.Debug().
		Str("db_cluster", rec.Identifier).
		Int("members", len(records)).
		Msg("expanded cluster membership")
	return records, nil
}

// clusterMember builds one synthetic record for a membership. The identifier
// combines cluster and instance so re-discovery of an unchanged cluster is
// stable.
func (h *RDS) clusterMember(cluster resource.Record, instanceID string, member map[string]any) resource.Record {
	identifier := fmt.Sprintf("%s-member-%s", cluster.Identifier, instanceID)

	props := resource.Properties{
		"DBClusterIdentifier": cluster.Identifier,
	}
	for k, v := range member {
		props[k] = v
	}

	return resource.Record{
		Type:       DBClusterMemberType,
		Identifier: identifier,
		ARN:        fmt.Sprintf("arn:aws:rds:%s:%s:cluster-member/%s", cluster.Region, cluster.AccountID, identifier),
		AccountID:  cluster.AccountID,
		Region:     cluster.Region,
		Service:    "rds",
		Properties: props,
	}
}
