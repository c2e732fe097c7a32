package relate

// Resolution selects how a rule's property value is matched to a target
// record.
type Resolution int

const (
	// ByIdentifier matches the value against target identifiers of the
	// rule's target type.
	ByIdentifier Resolution = iota

	// ByARN matches the value against discovered ARNs.
	ByARN
)

// Rule maps one property path of one source type to a typed edge. Each
// extracts a list at the path and emits one edge per element. Reverse flips
// the edge so the referenced resource becomes the source.
type Rule struct {
	SourceType string
	Path       string
	Each       bool
	Edge       EdgeType
	TargetType string
	Resolve    Resolution
	Reverse    bool
}

// defaultRules is the built-in inference table.
var defaultRules = []Rule{
	// Network containment. The VPC owns its subnets and gateways.
	{SourceType: "AWS::EC2::Subnet", Path: "VpcId", Edge: Owns, TargetType: "AWS::EC2::VPC", Reverse: true},
	{SourceType: "AWS::EC2::InternetGateway", Path: "VpcId", Edge: Owns, TargetType: "AWS::EC2::VPC", Reverse: true},
	{SourceType: "AWS::EC2::RouteTable", Path: "VpcId", Edge: Owns, TargetType: "AWS::EC2::VPC", Reverse: true},
	{SourceType: "AWS::EC2::SecurityGroup", Path: "VpcId", Edge: Owns, TargetType: "AWS::EC2::VPC", Reverse: true},
	{SourceType: "AWS::EC2::NetworkAcl", Path: "VpcId", Edge: Owns, TargetType: "AWS::EC2::VPC", Reverse: true},

	// Route table expansion. The table owns its rules; each rule points at
	// its traffic target through the dedicated target pass below.
	{SourceType: "AWS::EC2::RouteRule", Path: "RouteTableId", Edge: HasRoute, TargetType: "AWS::EC2::RouteTable", Reverse: true},

	// Placement references.
	{SourceType: "AWS::EC2::Instance", Path: "SubnetId", Edge: References, TargetType: "AWS::EC2::Subnet"},
	{SourceType: "AWS::EC2::Instance", Path: "SecurityGroupIds", Each: true, Edge: References, TargetType: "AWS::EC2::SecurityGroup"},
	{SourceType: "AWS::EC2::NatGateway", Path: "SubnetId", Edge: References, TargetType: "AWS::EC2::Subnet"},
	{SourceType: "AWS::EC2::NetworkInterface", Path: "SubnetId", Edge: References, TargetType: "AWS::EC2::Subnet"},
	{SourceType: "AWS::RDS::DBInstance", Path: "DBSubnetGroupName", Edge: References, TargetType: "AWS::RDS::DBSubnetGroup"},

	// Cluster membership expansion. The cluster owns its memberships; each
	// membership points at the instance it stands for.
	{SourceType: "AWS::RDS::DBClusterMember", Path: "DBClusterIdentifier", Edge: HasMember, TargetType: "AWS::RDS::DBCluster", Reverse: true},
	{SourceType: "AWS::RDS::DBClusterMember", Path: "DBInstanceIdentifier", Edge: References, TargetType: "AWS::RDS::DBInstance"},
	{SourceType: "AWS::RDS::DBCluster", Path: "DBClusterParameterGroupName", Edge: UsesParameterGroup, TargetType: "AWS::RDS::DBClusterParameterGroup"},

	// Logging destinations.
	{SourceType: "AWS::S3::Bucket", Path: "LoggingConfiguration.DestinationBucketName", Edge: LogsTo, TargetType: "AWS::S3::Bucket"},
	{SourceType: "AWS::EC2::FlowLog", Path: "LogGroupName", Edge: LogsTo, TargetType: "AWS::Logs::LogGroup"},
	{SourceType: "AWS::CloudTrail::Trail", Path: "S3BucketName", Edge: LogsTo, TargetType: "AWS::S3::Bucket"},

	// Identity attachments.
	{SourceType: "AWS::IAM::ManagedPolicy", Path: "Roles", Each: true, Edge: AppliesTo, TargetType: "AWS::IAM::Role"},
	{SourceType: "AWS::IAM::ManagedPolicy", Path: "Users", Each: true, Edge: AppliesTo, TargetType: "AWS::IAM::User"},
	{SourceType: "AWS::IAM::ManagedPolicy", Path: "Groups", Each: true, Edge: AppliesTo, TargetType: "AWS::IAM::Group"},
	{SourceType: "AWS::IAM::InstanceProfile", Path: "Roles", Each: true, Edge: References, TargetType: "AWS::IAM::Role"},
	{SourceType: "AWS::Lambda::Function", Path: "Role", Edge: References, TargetType: "AWS::IAM::Role", Resolve: ByARN},
}

// routeTargetTypes maps a route target's id prefix to its resource type.
// A target with no matching prefix stays unresolved under a generic type.
var routeTargetTypes = []struct {
	prefix string
	typ    string
}{
	{"igw-", "AWS::EC2::InternetGateway"},
	{"nat-", "AWS::EC2::NatGateway"},
	{"tgw-", "AWS::EC2::TransitGateway"},
	{"pcx-", "AWS::EC2::VPCPeeringConnection"},
	{"vpce-", "AWS::EC2::VPCEndpoint"},
	{"eni-", "AWS::EC2::NetworkInterface"},
	{"i-", "AWS::EC2::Instance"},
}

// CrossAccountRule links the local account to a foreign one when a shared
// networking resource names a different owner. OwnerPaths are probed in
// order; every foreign owner found yields one edge. AttrPaths copy property
// values onto the edge for traceability.
type CrossAccountRule struct {
	SourceType string
	OwnerPaths []string
	Edge       EdgeType
	AttrPaths  map[string]string
}

var defaultCrossAccountRules = []CrossAccountRule{
	{
		SourceType: "AWS::EC2::TransitGatewayAttachment",
		OwnerPaths: []string{"VpcOwnerId"},
		Edge:       ConnectedViaTransitGateway,
		AttrPaths:  map[string]string{"transit_gateway_id": "TransitGatewayId"},
	},
	{
		SourceType: "AWS::EC2::VPCPeeringConnection",
		OwnerPaths: []string{"AccepterVpcInfo.OwnerId", "RequesterVpcInfo.OwnerId"},
		Edge:       ConnectedViaVPCPeering,
		AttrPaths:  map[string]string{"peering_connection_id": "Id"},
	},
}
