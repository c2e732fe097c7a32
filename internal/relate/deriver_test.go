package relate

import (
	"testing"

	"github.com/rs/zerolog"

	"aws-graphx/internal/resource"
)

func testAccount() resource.Account {
	return resource.NewAccount("111111111111", "")
}

func rec(typ, id string, props resource.Properties) resource.Record {
	if props == nil {
		props = resource.Properties{}
	}
	return resource.Record{
		Type:       typ,
		Identifier: id,
		ARN:        resource.ExtractARN(props, typ, id, "eu-west-1", "111111111111"),
		AccountID:  "111111111111",
		Region:     "eu-west-1",
		Service:    resource.ServiceOf(typ),
		Properties: props,
	}
}

func findEdges(edges []Edge, t EdgeType) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func TestDeriveAccountOwnsEveryRecord(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::VPC", "vpc-1", nil),
		rec("AWS::S3::Bucket", "b-1", nil),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	owns := findEdges(edges, Owns)
	if len(owns) != 2 {
		t.Fatalf("got %d OWNS edges, want 2", len(owns))
	}
	for _, e := range owns {
		if e.Source.Kind != KindAccount || e.Source.Key != "111111111111" {
			t.Errorf("OWNS source = %+v, want the account node", e.Source)
		}
	}
}

func TestDeriveVpcOwnsSubnet(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::VPC", "vpc-1", resource.Properties{"VpcId": "vpc-1"}),
		rec("AWS::EC2::Subnet", "subnet-1", resource.Properties{"SubnetId": "subnet-1", "VpcId": "vpc-1"}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	var found bool
	for _, e := range findEdges(edges, Owns) {
		if e.Source.Identifier == "vpc-1" && e.Target.Identifier == "subnet-1" {
			found = true
			if e.Source.Unresolved || e.Target.Unresolved {
				t.Error("containment edge endpoints marked unresolved")
			}
		}
	}
	if !found {
		t.Fatal("no OWNS edge from vpc-1 to subnet-1")
	}
}

func TestDeriveRouteRuleEdges(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::RouteTable", "rtb-1", resource.Properties{"RouteTableId": "rtb-1", "VpcId": "vpc-1"}),
		rec("AWS::EC2::InternetGateway", "igw-1", resource.Properties{"InternetGatewayId": "igw-1"}),
		rec("AWS::EC2::RouteRule", "rtb-1-route-0", resource.Properties{
			"RouteTableId": "rtb-1",
			"Destination":  "0.0.0.0/0",
			"Target":       "igw-1",
		}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	hasRoute := findEdges(edges, HasRoute)
	if len(hasRoute) != 1 || hasRoute[0].Source.Identifier != "rtb-1" || hasRoute[0].Target.Identifier != "rtb-1-route-0" {
		t.Errorf("HAS_ROUTE edges = %+v, want rtb-1 -> rtb-1-route-0", hasRoute)
	}

	routesTo := findEdges(edges, RoutesTo)
	if len(routesTo) != 1 {
		t.Fatalf("got %d ROUTES_TO edges, want 1", len(routesTo))
	}
	e := routesTo[0]
	if e.Target.Identifier != "igw-1" || e.Target.Unresolved {
		t.Errorf("ROUTES_TO target = %+v, want resolved igw-1", e.Target)
	}
	if e.Attributes["destination"] != "0.0.0.0/0" {
		t.Errorf("destination attribute = %q", e.Attributes["destination"])
	}
}

func TestDeriveLocalRouteEmitsNoTarget(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::RouteRule", "rtb-1-route-0", resource.Properties{
			"RouteTableId": "rtb-1",
			"Destination":  "10.0.0.0/16",
			"Target":       "local",
		}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)
	if routes := findEdges(edges, RoutesTo); len(routes) != 0 {
		t.Errorf("local route produced %d ROUTES_TO edges", len(routes))
	}
}

func TestDeriveUnresolvedTargetBecomesPlaceholder(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::Subnet", "subnet-1", resource.Properties{"VpcId": "vpc-missing"}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	var placeholder *NodeRef
	for _, e := range findEdges(edges, Owns) {
		if e.Source.Identifier == "vpc-missing" {
			placeholder = &e.Source
		}
	}
	if placeholder == nil {
		t.Fatal("no edge referencing the missing VPC")
	}
	if !placeholder.Unresolved {
		t.Error("missing target not marked unresolved")
	}
	if placeholder.Type != "AWS::EC2::VPC" {
		t.Errorf("placeholder type = %q", placeholder.Type)
	}
}

func TestDeriveBucketLogging(t *testing.T) {
	records := []resource.Record{
		rec("AWS::S3::Bucket", "app-bucket", resource.Properties{
			"BucketName":           "app-bucket",
			"LoggingConfiguration": map[string]any{"DestinationBucketName": "audit-bucket"},
		}),
		rec("AWS::S3::Bucket", "audit-bucket", resource.Properties{"BucketName": "audit-bucket"}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	logsTo := findEdges(edges, LogsTo)
	if len(logsTo) != 1 {
		t.Fatalf("got %d LOGS_TO edges, want 1", len(logsTo))
	}
	if logsTo[0].Source.Identifier != "app-bucket" || logsTo[0].Target.Identifier != "audit-bucket" {
		t.Errorf("LOGS_TO = %s -> %s", logsTo[0].Source.Identifier, logsTo[0].Target.Identifier)
	}
}

func TestDerivePolicyAppliesToRoles(t *testing.T) {
	records := []resource.Record{
		rec("AWS::IAM::ManagedPolicy", "deploy-policy", resource.Properties{
			"Roles": []any{"role-a", "role-b"},
		}),
		rec("AWS::IAM::Role", "role-a", nil),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	applies := findEdges(edges, AppliesTo)
	if len(applies) != 2 {
		t.Fatalf("got %d APPLIES_TO edges, want 2", len(applies))
	}
	resolved, unresolved := 0, 0
	for _, e := range applies {
		if e.Target.Unresolved {
			unresolved++
		} else {
			resolved++
		}
	}
	if resolved != 1 || unresolved != 1 {
		t.Errorf("resolved=%d unresolved=%d, want 1/1", resolved, unresolved)
	}
}

func TestDeriveClusterMembership(t *testing.T) {
	records := []resource.Record{
		rec("AWS::RDS::DBCluster", "prod-db", resource.Properties{
			"DBClusterIdentifier":         "prod-db",
			"DBClusterParameterGroupName": "prod-db-params",
		}),
		rec("AWS::RDS::DBClusterMember", "prod-db-member-prod-db-1", resource.Properties{
			"DBClusterIdentifier":  "prod-db",
			"DBInstanceIdentifier": "prod-db-1",
			"IsClusterWriter":      true,
		}),
		rec("AWS::RDS::DBInstance", "prod-db-1", nil),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	members := findEdges(edges, HasMember)
	if len(members) != 1 || members[0].Source.Identifier != "prod-db" || members[0].Target.Identifier != "prod-db-member-prod-db-1" {
		t.Errorf("HAS_MEMBER edges = %+v, want prod-db -> its membership", members)
	}

	var instanceRef bool
	for _, e := range findEdges(edges, References) {
		if e.Source.Identifier == "prod-db-member-prod-db-1" && e.Target.Identifier == "prod-db-1" && !e.Target.Unresolved {
			instanceRef = true
		}
	}
	if !instanceRef {
		t.Error("no REFERENCES edge from the membership to the instance")
	}

	pg := findEdges(edges, UsesParameterGroup)
	if len(pg) != 1 {
		t.Fatalf("got %d USES_PARAMETER_GROUP edges, want 1", len(pg))
	}
	if pg[0].Target.Identifier != "prod-db-params" || !pg[0].Target.Unresolved {
		t.Errorf("parameter group target = %+v, want unresolved prod-db-params", pg[0].Target)
	}
}

func TestDeriveARNReference(t *testing.T) {
	roleARN := "arn:aws:iam::111111111111:role/deploy-role"
	records := []resource.Record{
		rec("AWS::IAM::Role", "deploy-role", resource.Properties{"Arn": roleARN}),
		rec("AWS::SNS::Topic", "alerts", resource.Properties{
			"TopicArn":     "arn:aws:sns:eu-west-1:111111111111:alerts",
			"DeliveryRole": roleARN,
		}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	var found bool
	for _, e := range findEdges(edges, References) {
		if e.Source.Identifier == "alerts" && e.Target.Identifier == "deploy-role" {
			found = true
			if e.Attributes["property"] == "" {
				t.Error("ARN reference edge carries no property attribute")
			}
		}
	}
	if !found {
		t.Fatal("no REFERENCES edge from topic to role")
	}
}

func TestDeriveCrossAccountTransitGateway(t *testing.T) {
	attachment := resource.Properties{
		"TransitGatewayId": "tgw-1",
		"VpcOwnerId":       "222222222222",
	}
	records := []resource.Record{
		rec("AWS::EC2::TransitGatewayAttachment", "tgw-attach-1", attachment),
		rec("AWS::EC2::TransitGatewayAttachment", "tgw-attach-2", attachment),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	conns := findEdges(edges, ConnectedViaTransitGateway)
	if len(conns) != 1 {
		t.Fatalf("got %d cross-account edges, want exactly 1", len(conns))
	}
	e := conns[0]
	if e.Source.Key != "111111111111" || e.Target.Key != "222222222222" {
		t.Errorf("edge endpoints = %s -> %s", e.Source.Key, e.Target.Key)
	}
	if e.Attributes["transit_gateway_id"] != "tgw-1" {
		t.Errorf("transit_gateway_id = %q", e.Attributes["transit_gateway_id"])
	}
}

func TestDeriveSameAccountAttachmentNoEdge(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::TransitGatewayAttachment", "tgw-attach-1", resource.Properties{
			"TransitGatewayId": "tgw-1",
			"VpcOwnerId":       "111111111111",
		}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)
	if conns := findEdges(edges, ConnectedViaTransitGateway); len(conns) != 0 {
		t.Errorf("same-account attachment produced %d edges", len(conns))
	}
}

func TestDeriveVpcPeeringBothOwners(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::VPCPeeringConnection", "pcx-1", resource.Properties{
			"AccepterVpcInfo":  map[string]any{"OwnerId": "222222222222"},
			"RequesterVpcInfo": map[string]any{"OwnerId": "111111111111"},
		}),
	}
	edges := NewDeriver(zerolog.Nop()).Derive(testAccount(), records)

	conns := findEdges(edges, ConnectedViaVPCPeering)
	if len(conns) != 1 {
		t.Fatalf("got %d peering edges, want 1", len(conns))
	}
	if conns[0].Target.Key != "222222222222" {
		t.Errorf("peer account = %s", conns[0].Target.Key)
	}
	if conns[0].Attributes["peering_connection_id"] != "pcx-1" {
		t.Errorf("peering_connection_id = %q", conns[0].Attributes["peering_connection_id"])
	}
}

func TestDeriveDeterministicOrder(t *testing.T) {
	records := []resource.Record{
		rec("AWS::EC2::VPC", "vpc-1", nil),
		rec("AWS::EC2::Subnet", "subnet-1", resource.Properties{"VpcId": "vpc-1"}),
		rec("AWS::EC2::Subnet", "subnet-2", resource.Properties{"VpcId": "vpc-1"}),
	}
	d := NewDeriver(zerolog.Nop())

	first := d.Derive(testAccount(), records)
	second := d.Derive(testAccount(), records)
	if len(first) != len(second) {
		t.Fatalf("edge counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key() != second[i].Key() {
			t.Fatalf("edge order diverges at %d: %q vs %q", i, first[i].Key(), second[i].Key())
		}
	}
}
