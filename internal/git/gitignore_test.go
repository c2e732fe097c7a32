package git

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendMissingCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")

	added, err := appendMissing(path, []string{".aws-graphx.yaml", "neo4j-data/"})
	if err != nil {
		t.Fatalf("appendMissing: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added = %v, want both entries", added)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(data) != ".aws-graphx.yaml\nneo4j-data/\n" {
		t.Errorf("content = %q", data)
	}
}

func TestAppendMissingSkipsExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	if err := os.WriteFile(path, []byte("node_modules/\n.aws-graphx.yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := appendMissing(path, []string{".aws-graphx.yaml", "neo4j-data/"})
	if err != nil {
		t.Fatalf("appendMissing: %v", err)
	}
	if len(added) != 1 || added[0] != "neo4j-data/" {
		t.Errorf("added = %v, want only the new entry", added)
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), ".aws-graphx.yaml") != 1 {
		t.Errorf("existing entry duplicated: %q", data)
	}
}

func TestAppendMissingRepairsMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	if err := os.WriteFile(path, []byte("node_modules/"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := appendMissing(path, []string{"neo4j-data/"}); err != nil {
		t.Fatalf("appendMissing: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "node_modules/\nneo4j-data/\n" {
		t.Errorf("content = %q", data)
	}
}

func TestAppendMissingNoChangeWhenComplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	if err := os.WriteFile(path, []byte("neo4j-data/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := appendMissing(path, []string{"neo4j-data/"})
	if err != nil {
		t.Fatalf("appendMissing: %v", err)
	}
	if added != nil {
		t.Errorf("added = %v, want nothing", added)
	}
}
