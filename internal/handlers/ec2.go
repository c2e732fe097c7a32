package handlers

import (
	"context"
	"fmt"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/resource"
)

// RouteRuleType is the synthetic type for one route inside a route table.
// The control plane models routes as an embedded list; expanding them into
// records of their own lets each route become a first-class graph node.
const RouteRuleType = "AWS::EC2::RouteRule"

// routeTargetFields are the properties a route can point its traffic at,
// in the order they are probed.
var routeTargetFields = []string{
	"GatewayId",
	"NatGatewayId",
	"TransitGatewayId",
	"VpcPeeringConnectionId",
	"NetworkInterfaceId",
	"InstanceId",
	"EgressOnlyInternetGatewayId",
	"CarrierGatewayId",
	"LocalGatewayId",
}

// EC2 extends the generic handler with route table expansion. Route tables
// list only summary data; the full document with the embedded Routes list
// comes from a per-resource detail fetch.
type EC2 struct {
	*Generic
}

// NewEC2 builds the ec2 handler.
func NewEC2(env Env) *EC2 {
	return &EC2{Generic: NewGeneric("ec2", env)}
}

// Describe expands a route table's embedded routes into synthetic RouteRule
// records. Non-route-table records need no detail pass.
func (h *EC2) Describe(ctx context.Context, api cloud.API, rec resource.Record) ([]resource.Record, error) {
	if rec.Type != "AWS::EC2::RouteTable" {
		return nil, nil
	}

	desc, err := api.GetResource(ctx, rec.Type, rec.Identifier)
	if err != nil {
		return nil, err
	}
	props := resource.ParseProperties(desc.Properties)

	routes, err := props.ListAt("Routes")
	if err != nil {
		return nil, nil
	}

	rules := make([]resource.Record, 0, len(routes))
	for i, raw := range routes {
		route, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		rules = append(rules, h.routeRule(rec, i, route))
	}
	h.env.Log.Debug().
		Str("route_table", rec.Identifier).
		Int("routes", len(rules)).
		Msg("expanded route table")
	return rules, nil
}

// routeRule builds one synthetic record for a route. The identifier combines
// the owning table and the route's position so re-discovery is stable for an
// unchanged table.
func (h *EC2) routeRule(table resource.Record, index int, route map[string]any) resource.Record {
	identifier := fmt.Sprintf("%s-route-%d", table.Identifier, index)

	props := resource.Properties{
		"RouteTableId": table.Identifier,
	}
	for k, v := range route {
		props[k] = v
	}
	if dest, ok := route["DestinationCidrBlock"].(string); ok {
		props["Destination"] = dest
	} else if dest, ok := route["DestinationIpv6CidrBlock"].(string); ok {
		props["Destination"] = dest
	} else if dest, ok := route["DestinationPrefixListId"].(string); ok {
		props["Destination"] = dest
	}
	for _, field := range routeTargetFields {
		if target, ok := route[field].(string); ok && target != "" {
			props["Target"] = target
			break
		}
	}

	return resource.Record{
		Type:       RouteRuleType,
		Identifier: identifier,
		ARN:        fmt.Sprintf("arn:aws:ec2:%s:%s:route-rule/%s", table.Region, table.AccountID, identifier),
		AccountID:  table.AccountID,
		Region:     table.Region,
		Service:    "ec2",
		Properties: props,
	}
}
