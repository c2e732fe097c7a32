// Package handlers contains the per-service discovery handlers and the
// catalog of resource types they cover. Most services are served by the
// generic handler; services whose resources need extra shaping (route
// tables, buckets, identity resources) get their own handler on top of it.
package handlers

import "sort"

// catalog maps each logical service to the vendor-qualified resource types
// discovered for it. The list tracks what the Cloud Control API can
// enumerate without required extra inputs.
var catalog = map[string][]string{
	"ec2": {
		"AWS::EC2::VPC",
		"AWS::EC2::Subnet",
		"AWS::EC2::RouteTable",
		"AWS::EC2::InternetGateway",
		"AWS::EC2::NatGateway",
		"AWS::EC2::SecurityGroup",
		"AWS::EC2::Instance",
		"AWS::EC2::EIP",
		"AWS::EC2::NetworkInterface",
		"AWS::EC2::NetworkAcl",
		"AWS::EC2::TransitGateway",
		"AWS::EC2::TransitGatewayAttachment",
		"AWS::EC2::VPCPeeringConnection",
		"AWS::EC2::VPCEndpoint",
		"AWS::EC2::KeyPair",
		"AWS::EC2::Volume",
		"AWS::EC2::LaunchTemplate",
		"AWS::EC2::FlowLog",
		"AWS::EC2::DHCPOptions",
		"AWS::EC2::EgressOnlyInternetGateway",
		"AWS::EC2::CustomerGateway",
		"AWS::EC2::VPNGateway",
		"AWS::EC2::VPNConnection",
		"AWS::EC2::PrefixList",
		"AWS::EC2::PlacementGroup",
		"AWS::EC2::CapacityReservation",
		"AWS::EC2::Host",
	},
	"s3": {
		"AWS::S3::Bucket",
		"AWS::S3::AccessPoint",
		"AWS::S3::StorageLens",
	},
	"iam": {
		"AWS::IAM::Role",
		"AWS::IAM::ManagedPolicy",
		"AWS::IAM::User",
		"AWS::IAM::Group",
		"AWS::IAM::InstanceProfile",
		"AWS::IAM::OIDCProvider",
		"AWS::IAM::SAMLProvider",
		"AWS::IAM::VirtualMFADevice",
	},
	"lambda": {
		"AWS::Lambda::Function",
		"AWS::Lambda::EventSourceMapping",
		"AWS::Lambda::LayerVersion",
		"AWS::Lambda::CodeSigningConfig",
	},
	"rds": {
		"AWS::RDS::DBInstance",
		"AWS::RDS::DBCluster",
		"AWS::RDS::DBSubnetGroup",
		"AWS::RDS::DBParameterGroup",
		"AWS::RDS::DBClusterParameterGroup",
		"AWS::RDS::OptionGroup",
		"AWS::RDS::DBProxy",
		"AWS::RDS::GlobalCluster",
		"AWS::RDS::EventSubscription",
	},
	"dynamodb": {
		"AWS::DynamoDB::Table",
		"AWS::DynamoDB::GlobalTable",
	},
	"sns": {
		"AWS::SNS::Topic",
		"AWS::SNS::Subscription",
	},
	"sqs": {
		"AWS::SQS::Queue",
	},
	"kms": {
		"AWS::KMS::Key",
		"AWS::KMS::Alias",
	},
	"ecs": {
		"AWS::ECS::Cluster",
		"AWS::ECS::Service",
		"AWS::ECS::TaskDefinition",
		"AWS::ECS::CapacityProvider",
	},
	"eks": {
		"AWS::EKS::Cluster",
		"AWS::EKS::Nodegroup",
	},
	"elasticloadbalancing": {
		"AWS::ElasticLoadBalancingV2::LoadBalancer",
		"AWS::ElasticLoadBalancingV2::TargetGroup",
		"AWS::ElasticLoadBalancingV2::Listener",
	},
	"cloudfront": {
		"AWS::CloudFront::Distribution",
		"AWS::CloudFront::OriginAccessControl",
		"AWS::CloudFront::CachePolicy",
		"AWS::CloudFront::OriginRequestPolicy",
		"AWS::CloudFront::Function",
	},
	"route53": {
		"AWS::Route53::HostedZone",
		"AWS::Route53::HealthCheck",
	},
	"apigateway": {
		"AWS::ApiGateway::RestApi",
		"AWS::ApiGatewayV2::Api",
		"AWS::ApiGateway::ApiKey",
		"AWS::ApiGateway::UsagePlan",
		"AWS::ApiGateway::DomainName",
		"AWS::ApiGatewayV2::DomainName",
	},
	"logs": {
		"AWS::Logs::LogGroup",
		"AWS::Logs::Destination",
		"AWS::Logs::QueryDefinition",
		"AWS::Logs::ResourcePolicy",
	},
	"events": {
		"AWS::Events::EventBus",
		"AWS::Events::Rule",
		"AWS::Events::Connection",
		"AWS::Events::ApiDestination",
	},
	"secretsmanager": {
		"AWS::SecretsManager::Secret",
	},
	"ssm": {
		"AWS::SSM::Parameter",
		"AWS::SSM::Document",
		"AWS::SSM::PatchBaseline",
		"AWS::SSM::MaintenanceWindow",
	},
	"cloudformation": {
		"AWS::CloudFormation::Stack",
	},
	"elasticache": {
		"AWS::ElastiCache::CacheCluster",
		"AWS::ElastiCache::ReplicationGroup",
		"AWS::ElastiCache::SubnetGroup",
		"AWS::ElastiCache::ParameterGroup",
		"AWS::ElastiCache::User",
		"AWS::ElastiCache::UserGroup",
	},
	"efs": {
		"AWS::EFS::FileSystem",
		"AWS::EFS::MountTarget",
		"AWS::EFS::AccessPoint",
	},
	"ecr": {
		"AWS::ECR::Repository",
		"AWS::ECR::PublicRepository",
	},
	"stepfunctions": {
		"AWS::StepFunctions::StateMachine",
		"AWS::StepFunctions::Activity",
	},
	"kinesis": {
		"AWS::Kinesis::Stream",
	},
	"firehose": {
		"AWS::KinesisFirehose::DeliveryStream",
	},
	"backup": {
		"AWS::Backup::BackupVault",
		"AWS::Backup::BackupPlan",
		"AWS::Backup::Framework",
		"AWS::Backup::ReportPlan",
	},
	"acm": {
		"AWS::CertificateManager::Certificate",
	},
	"wafv2": {
		"AWS::WAFv2::WebACL",
		"AWS::WAFv2::IPSet",
		"AWS::WAFv2::RuleGroup",
		"AWS::WAFv2::RegexPatternSet",
	},
	"cloudtrail": {
		"AWS::CloudTrail::Trail",
		"AWS::CloudTrail::EventDataStore",
	},
	"config": {
		"AWS::Config::ConfigRule",
		"AWS::Config::ConfigurationRecorder",
		"AWS::Config::ConformancePack",
		"AWS::Config::AggregationAuthorization",
	},
	"autoscaling": {
		"AWS::AutoScaling::AutoScalingGroup",
		"AWS::AutoScaling::LaunchConfiguration",
	},
	"athena": {
		"AWS::Athena::WorkGroup",
		"AWS::Athena::DataCatalog",
	},
	"glue": {
		"AWS::Glue::Database",
		"AWS::Glue::Job",
		"AWS::Glue::Crawler",
		"AWS::Glue::Trigger",
		"AWS::Glue::Workflow",
	},
	"redshift": {
		"AWS::Redshift::Cluster",
		"AWS::Redshift::ClusterSubnetGroup",
		"AWS::Redshift::ClusterParameterGroup",
		"AWS::Redshift::EventSubscription",
	},
	"codebuild": {
		"AWS::CodeBuild::Project",
		"AWS::CodeBuild::ReportGroup",
	},
	"codepipeline": {
		"AWS::CodePipeline::Pipeline",
		"AWS::CodePipeline::CustomActionType",
		"AWS::CodePipeline::Webhook",
	},
	"cloudwatch": {
		"AWS::CloudWatch::Alarm",
		"AWS::CloudWatch::CompositeAlarm",
		"AWS::CloudWatch::Dashboard",
	},
	"mq": {
		"AWS::AmazonMQ::Broker",
		"AWS::AmazonMQ::Configuration",
	},
	"msk": {
		"AWS::MSK::Cluster",
		"AWS::MSK::Configuration",
	},
	"opensearch": {
		"AWS::OpenSearchService::Domain",
	},
	"elasticbeanstalk": {
		"AWS::ElasticBeanstalk::Application",
		"AWS::ElasticBeanstalk::Environment",
	},
	"cognito": {
		"AWS::Cognito::UserPool",
		"AWS::Cognito::IdentityPool",
	},
	"sagemaker": {
		"AWS::SageMaker::Domain",
		"AWS::SageMaker::Model",
		"AWS::SageMaker::NotebookInstance",
	},
	"batch": {
		"AWS::Batch::ComputeEnvironment",
		"AWS::Batch::JobQueue",
		"AWS::Batch::JobDefinition",
	},
	"transfer": {
		"AWS::Transfer::Server",
	},
	"appsync": {
		"AWS::AppSync::GraphQLApi",
	},
	"amplify": {
		"AWS::Amplify::App",
	},
	"appconfig": {
		"AWS::AppConfig::Application",
	},
	"guardduty": {
		"AWS::GuardDuty::Detector",
	},
	"securityhub": {
		"AWS::SecurityHub::Hub",
	},
	"networkfirewall": {
		"AWS::NetworkFirewall::Firewall",
		"AWS::NetworkFirewall::FirewallPolicy",
		"AWS::NetworkFirewall::RuleGroup",
	},
	"servicediscovery": {
		"AWS::ServiceDiscovery::HttpNamespace",
		"AWS::ServiceDiscovery::PrivateDnsNamespace",
	},
	"dms": {
		"AWS::DMS::ReplicationInstance",
		"AWS::DMS::Endpoint",
	},
	"mwaa": {
		"AWS::MWAA::Environment",
	},
	"globalaccelerator": {
		"AWS::GlobalAccelerator::Accelerator",
	},
}

// globalServices have no regional scope. Their resources are recorded with
// an empty region and their ARNs carry no region segment.
var globalServices = map[string]bool{
	"iam":        true,
	"route53":    true,
	"cloudfront": true,
}

// skipTypes are resource types the control plane is known to reject when
// listed without required additional inputs, or that are prohibitively slow
// to enumerate. They stay out of discovery entirely.
var skipTypes = map[string]bool{
	"AWS::EC2::NetworkInsightsAnalysis":   true,
	"AWS::EC2::NetworkInsightsPath":       true,
	"AWS::S3::MultiRegionAccessPoint":     true,
	"AWS::IAM::ServerCertificate":         true,
	"AWS::Route53::RecordSet":             true,
	"AWS::SSM::Association":               true,
	"AWS::CloudFormation::StackSet":       true,
	"AWS::ApiGateway::Deployment":         true,
	"AWS::Logs::MetricFilter":             true,
	"AWS::ElasticLoadBalancingV2::Rule":   true,
	"AWS::EC2::SecurityGroupIngress":      true,
	"AWS::EC2::SecurityGroupEgress":       true,
	"AWS::Lambda::Permission":             true,
	"AWS::SNS::TopicPolicy":               true,
	"AWS::SQS::QueuePolicy":               true,
	"AWS::KMS::ReplicaKey":                true,
	"AWS::ECS::PrimaryTaskSet":            true,
	"AWS::Events::Archive":                true,
	"AWS::Backup::BackupSelection":        true,
	"AWS::Config::OrganizationConfigRule": true,
}

// Services returns the sorted list of catalogued service names.
func Services() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypesFor returns the discoverable types for a service, with skip-listed
// types removed.
func TypesFor(service string) []string {
	var types []string
	for _, t := range catalog[service] {
		if skipTypes[t] {
			continue
		}
		types = append(types, t)
	}
	return types
}

// IsGlobal reports whether a service's resources have no regional scope.
func IsGlobal(service string) bool {
	return globalServices[service]
}
