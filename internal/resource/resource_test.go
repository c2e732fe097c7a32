package resource

import (
	"errors"
	"testing"
)

func TestRecordKey(t *testing.T) {
	rec := Record{Type: "AWS::EC2::VPC", Identifier: "vpc-1", AccountID: "111111111111", Region: "eu-west-1"}
	want := "AWS::EC2::VPC|vpc-1|111111111111|eu-west-1"
	if rec.Key() != want {
		t.Errorf("Key() = %q, want %q", rec.Key(), want)
	}

	global := Record{Type: "AWS::IAM::Role", Identifier: "deploy", AccountID: "111111111111"}
	if global.Key() != "AWS::IAM::Role|deploy|111111111111|" {
		t.Errorf("global Key() = %q", global.Key())
	}
}

func TestServiceOfAndShortName(t *testing.T) {
	cases := []struct {
		typ     string
		service string
		short   string
	}{
		{"AWS::EC2::Instance", "ec2", "instance"},
		{"AWS::S3::Bucket", "s3", "bucket"},
		{"AWS::ElasticLoadBalancingV2::LoadBalancer", "elasticloadbalancingv2", "loadbalancer"},
	}
	for _, tc := range cases {
		if got := ServiceOf(tc.typ); got != tc.service {
			t.Errorf("ServiceOf(%s) = %q, want %q", tc.typ, got, tc.service)
		}
		if got := ShortName(tc.typ); got != tc.short {
			t.Errorf("ShortName(%s) = %q, want %q", tc.typ, got, tc.short)
		}
	}
}

func TestNewAccountDefaultsName(t *testing.T) {
	if a := NewAccount("111111111111", ""); a.Name != "Account-111111111111" {
		t.Errorf("default name = %q", a.Name)
	}
	if a := NewAccount("111111111111", "prod"); a.Name != "prod" {
		t.Errorf("name = %q, configured name did not win", a.Name)
	}
}

func TestParsePropertiesFallback(t *testing.T) {
	props := ParseProperties("not json at all")
	if props["raw_properties"] != "not json at all" {
		t.Errorf("undecodable payload dropped: %v", props)
	}
	if len(ParseProperties("")) != 0 {
		t.Error("empty payload produced properties")
	}
}

func TestPropertiesPathAccess(t *testing.T) {
	props := ParseProperties(`{
		"BucketName": "b",
		"LoggingConfiguration": {"DestinationBucketName": "audit"},
		"Tags": [{"Key": "env", "Value": "prod"}],
		"Ports": [80, 443]
	}`)

	if v, err := props.StringAt("LoggingConfiguration.DestinationBucketName"); err != nil || v != "audit" {
		t.Errorf("StringAt nested = %q, %v", v, err)
	}
	if _, err := props.StringAt("LoggingConfiguration.Missing"); err == nil {
		t.Error("missing path did not fail")
	} else {
		var notFound *PathNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("missing path error = %T", err)
		}
	}
	// Wrong shape fails rather than coercing.
	if _, err := props.StringAt("Ports"); err == nil {
		t.Error("list read as string")
	}
	if l, err := props.ListAt("Tags"); err != nil || len(l) != 1 {
		t.Errorf("ListAt = %v, %v", l, err)
	}
	if m, err := props.MapAt("LoggingConfiguration"); err != nil || m["DestinationBucketName"] != "audit" {
		t.Errorf("MapAt = %v, %v", m, err)
	}
}

func TestFlatten(t *testing.T) {
	props := ParseProperties(`{
		"VpcId": "vpc-1",
		"Enabled": true,
		"Config": {"Nested": {"Deep": "x"}},
		"Names": ["a", "b"],
		"Rules": [{"Port": 80}]
	}`)

	flat := props.Flatten()
	if flat["VpcId"] != "vpc-1" {
		t.Errorf("VpcId = %v", flat["VpcId"])
	}
	if flat["Enabled"] != true {
		t.Errorf("Enabled = %v", flat["Enabled"])
	}
	if flat["Config_Nested_Deep"] != "x" {
		t.Errorf("nested key = %v", flat["Config_Nested_Deep"])
	}
	if names, ok := flat["Names"].([]any); !ok || len(names) != 2 {
		t.Errorf("scalar list = %v", flat["Names"])
	}
	if s, ok := flat["Rules"].(string); !ok || s != `[{"Port":80}]` {
		t.Errorf("complex list = %v", flat["Rules"])
	}
}

func TestParseARN(t *testing.T) {
	arn, ok := ParseARN("arn:aws:ec2:eu-west-1:111111111111:vpc/vpc-1")
	if !ok {
		t.Fatal("well-formed ARN rejected")
	}
	if arn.Service != "ec2" || arn.Region != "eu-west-1" || arn.AccountID != "111111111111" {
		t.Errorf("parsed = %+v", arn)
	}
	if arn.ResourceID() != "vpc-1" {
		t.Errorf("ResourceID = %q", arn.ResourceID())
	}

	for _, bad := range []string{"", "vpc-1", "arn:aws:s3", "http://example.com"} {
		if _, ok := ParseARN(bad); ok {
			t.Errorf("ParseARN accepted %q", bad)
		}
	}
}

func TestExtractARN(t *testing.T) {
	// Document field wins.
	props := Properties{"Arn": "arn:aws:lambda:eu-west-1:111111111111:function:fn"}
	if got := ExtractARN(props, "AWS::Lambda::Function", "fn", "eu-west-1", "111111111111"); got != props["Arn"] {
		t.Errorf("ExtractARN = %q", got)
	}

	// Synthesis fallbacks.
	cases := []struct {
		typ, id, region string
		want            string
	}{
		{"AWS::S3::Bucket", "my-bucket", "eu-west-1", "arn:aws:s3:::my-bucket"},
		{"AWS::IAM::Role", "deploy", "", "arn:aws:iam::111111111111:role/deploy"},
		{"AWS::EC2::VPC", "vpc-1", "eu-west-1", "arn:aws:ec2:eu-west-1:111111111111:vpc/vpc-1"},
	}
	for _, tc := range cases {
		if got := ExtractARN(Properties{}, tc.typ, tc.id, tc.region, "111111111111"); got != tc.want {
			t.Errorf("ExtractARN(%s) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}
