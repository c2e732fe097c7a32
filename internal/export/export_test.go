package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awalterschulze/gographviz"

	"aws-graphx/internal/relate"
	"aws-graphx/internal/resource"
)

func sampleRun() (resource.Account, []resource.Record, []relate.Edge) {
	account := resource.NewAccount("111111111111", "prod")
	vpc := resource.Record{
		Type:       "AWS::EC2::VPC",
		Identifier: "vpc-1",
		AccountID:  "111111111111",
		Region:     "eu-west-1",
		Service:    "ec2",
		Properties: resource.Properties{"CidrBlock": "10.0.0.0/16"},
	}
	subnet := resource.Record{
		Type:       "AWS::EC2::Subnet",
		Identifier: "subnet-1",
		AccountID:  "111111111111",
		Region:     "eu-west-1",
		Service:    "ec2",
		Properties: resource.Properties{"VpcId": "vpc-1"},
	}
	edges := []relate.Edge{
		{Source: relate.AccountRef(account.ID), Target: relate.ResourceRef(vpc), Type: relate.Owns},
		{Source: relate.ResourceRef(vpc), Target: relate.ResourceRef(subnet), Type: relate.Owns},
		{Source: relate.ResourceRef(subnet), Target: relate.UnresolvedRef("AWS::EC2::RouteTable", "rtb-x"), Type: relate.References},
	}
	return account, []resource.Record{vpc, subnet}, edges
}

func TestWriteJSONRoundTrips(t *testing.T) {
	account, records, edges := sampleRun()
	path := filepath.Join(t.TempDir(), "run.json")

	if err := WriteJSON(path, "run-1", account, records, edges); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.RunID != "run-1" {
		t.Errorf("RunID = %q", doc.RunID)
	}
	if doc.Account.ID != "111111111111" {
		t.Errorf("account = %+v", doc.Account)
	}
	if len(doc.Resources) != 2 || len(doc.Edges) != 3 {
		t.Errorf("resources=%d edges=%d", len(doc.Resources), len(doc.Edges))
	}
	if doc.Edges[0].Type != "OWNS" {
		t.Errorf("first edge type = %q", doc.Edges[0].Type)
	}
}

func TestWriteDOTProducesParsableGraph(t *testing.T) {
	account, records, edges := sampleRun()
	path := filepath.Join(t.TempDir(), "run.dot")

	if err := WriteDOT(path, account, records, edges); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	ast, err := gographviz.ParseString(string(data))
	if err != nil {
		t.Fatalf("export is not valid DOT: %v", err)
	}
	parsed := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, parsed); err != nil {
		t.Fatalf("analysing DOT: %v", err)
	}
	if !parsed.Directed {
		t.Error("graph is not directed")
	}
	// Account, two resources, one placeholder.
	if len(parsed.Nodes.Nodes) != 4 {
		t.Errorf("got %d nodes, want 4", len(parsed.Nodes.Nodes))
	}
	if len(parsed.Edges.Edges) != 3 {
		t.Errorf("got %d edges, want 3", len(parsed.Edges.Edges))
	}
	if !strings.Contains(string(data), "OWNS") {
		t.Error("edge labels missing from DOT output")
	}
}
