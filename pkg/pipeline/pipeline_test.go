package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphweave/pkg/cache"
	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/export"
	"github.com/matzehuels/graphweave/pkg/loader"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil)
}

func TestExecuteJSON(t *testing.T) {
	path := writeFile(t, "edges.csv", "source,target,weight\na,b,5\na,b,3\n")
	r := newTestRunner(t)

	result, err := r.Execute(context.Background(), Options{
		Source:       path,
		TargetColumn: 1,
		WeightColumn: loader.Int(2),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.VertexCount != 2 || result.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v, want 2 vertices, 1 edge", result.Stats)
	}
	e, _ := result.Graph.Edge("a", "b")
	if e == nil || e.Weight != 8 {
		t.Errorf("edge a-b = %v, want weight 8", e)
	}

	var doc export.Document
	if err := json.Unmarshal(result.Artifacts["json"], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(doc.Edges) != 1 || doc.Edges[0].Weight != 8 {
		t.Errorf("document edges = %v", doc.Edges)
	}
}

func TestExecuteCacheHit(t *testing.T) {
	path := writeFile(t, "edges.csv", "a,b,1\nb,c,2\n")
	r := newTestRunner(t)
	opts := Options{
		Source:       path,
		TargetColumn: 1,
		WeightColumn: loader.Int(2),
		HasHeaders:   boolPtr(false),
	}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.GraphHit {
		t.Error("first run reported a cache hit")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.GraphHit {
		t.Error("second run missed the cache")
	}
	if second.Graph.EdgeCount() != 2 {
		t.Errorf("cached graph EdgeCount = %d, want 2", second.Graph.EdgeCount())
	}
	if string(first.Artifacts["json"]) != string(second.Artifacts["json"]) {
		t.Error("cached JSON differs from the original")
	}

	// Refresh bypasses the cache read.
	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.GraphHit {
		t.Error("refresh run reported a cache hit")
	}
}

func TestExecuteKeySensitivity(t *testing.T) {
	path := writeFile(t, "edges.csv", "a,b,1\n")
	r := newTestRunner(t)

	base := Options{Source: path, TargetColumn: 1, HasHeaders: boolPtr(false)}
	first, err := r.Execute(context.Background(), base)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	directed := base
	directed.Directed = true
	second, err := r.Execute(context.Background(), directed)
	if err != nil {
		t.Fatalf("Execute directed: %v", err)
	}
	if second.CacheInfo.GraphHit {
		t.Error("changed options hit the old cache entry")
	}
	if first.GraphKey == second.GraphKey {
		t.Error("different options produced the same graph key")
	}
}

func TestExecuteDOT(t *testing.T) {
	path := writeFile(t, "edges.csv", "a,b,2\n")
	r := newTestRunner(t)

	result, err := r.Execute(context.Background(), Options{
		Source:       path,
		TargetColumn: 1,
		WeightColumn: loader.Int(2),
		HasHeaders:   boolPtr(false),
		Formats:      []string{"dot"},
		Weights:      true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dot := string(result.Artifacts["dot"])
	if !strings.Contains(dot, `"a" -- "b" [label="2"]`) {
		t.Errorf("dot artifact missing weighted edge:\n%s", dot)
	}
}

func TestExecuteValidation(t *testing.T) {
	r := NewRunner(nil, nil)
	tests := []struct {
		name string
		opts Options
		code apperrors.Code
	}{
		{"EmptySource", Options{}, apperrors.ErrCodeInvalidSource},
		{"NegativeColumn", Options{Source: "x.csv", SourceColumn: -1}, apperrors.ErrCodeInvalidColumn},
		{"BadDialect", Options{Source: "x.csv", Dialect: "fancy"}, apperrors.ErrCodeInvalidDialect},
		{"BadFormat", Options{Source: "x.csv", Formats: []string{"pdf"}}, apperrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Execute(context.Background(), tt.opts); !apperrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteMissingFile(t *testing.T) {
	r := NewRunner(nil, nil)
	_, err := r.Execute(context.Background(), Options{Source: filepath.Join(t.TempDir(), "absent.csv")})
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConsolidate(t *testing.T) {
	path := writeFile(t, "pairs.csv", "X,Movie1\nY,Movie1\nZ,Movie1\nY,Movie2\nW,Movie2\n")
	r := newTestRunner(t)

	result, err := r.Consolidate(context.Background(), ConsolidateOptions{
		Source:      path,
		PivotColumn: 1,
		HasHeaders:  boolPtr(false),
		Dialect:     "excel",
	})
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if result.Stats.VertexCount != 4 || result.Stats.EdgeCount != 4 {
		t.Errorf("stats = %+v, want 4 vertices, 4 edges", result.Stats)
	}
	if result.Graph.HasEdge("X", "W") {
		t.Error("edge X-W exists without a shared pivot")
	}
	if len(result.Artifacts["json"]) == 0 {
		t.Error("missing json artifact")
	}
}

func boolPtr(v bool) *bool { return &v }
