package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"DeriveFromInput", "", "edges.csv", "edges"},
		{"DeriveFromPath", "", "/data/edges.csv", "/data/edges"},
		{"DeriveFromURL", "", "https://example.com/data/edges.csv?rev=2", "edges"},
		{"OutputVerbatim", "graph", "edges.csv", "graph"},
		{"OutputStripsFormatExt", "graph.svg", "edges.csv", "graph"},
		{"OutputKeepsOtherExt", "graph.out", "edges.csv", "graph.out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"json": []byte(`{}`),
		"dot":  []byte("graph {}"),
	}

	base := filepath.Join(dir, "out")
	if err := writeArtifacts(artifacts, []string{"json", "dot"}, base, "edges.csv"); err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}

	for _, ext := range []string{"json", "dot"} {
		path := base + "." + ext
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
			continue
		}
		if string(data) != string(artifacts[ext]) {
			t.Errorf("artifact %s content = %q", path, data)
		}
	}
}

func TestWriteArtifactsSingleFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	err := writeArtifacts(map[string][]byte{"json": []byte(`{}`)}, []string{"json"}, path, "edges.csv")
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("single-format output not at %s: %v", path, err)
	}
}
