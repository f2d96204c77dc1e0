package projection

import (
	"testing"

	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

func apply(t *testing.T, g *graph.Graph, types *metadata.Registry, b Builder, rows [][]string) {
	t.Helper()
	fn := b.Configure(g, types)
	for _, row := range rows {
		if err := fn(row); err != nil {
			t.Fatalf("row %v: %v", row, err)
		}
	}
}

func mustEdge(t *testing.T, g *graph.Graph, source, target string) *graph.Edge {
	t.Helper()
	e, ok := g.Edge(source, target)
	if !ok {
		t.Fatalf("edge %s-%s not found", source, target)
	}
	return e
}

func TestEdgeIgnoreMetadataWeightSum(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want float64
	}{
		{"TwoRowsSum", [][]string{{"A", "B", "5"}, {"A", "B", "3"}}, 8},
		{"ReversedEndpoints", [][]string{{"A", "B", "5"}, {"B", "A", "3"}}, 8},
		{"SignedWeights", [][]string{{"A", "B", "-10"}, {"A", "B", "11"}}, 1},
		{"FloatWeights", [][]string{{"A", "B", "0.5"}, {"A", "B", "0.25"}}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			apply(t, g, metadata.NewRegistry(), EdgeIgnoreMetadata(0, 1, 2), tt.rows)
			if g.EdgeCount() != 1 {
				t.Fatalf("EdgeCount = %d, want 1", g.EdgeCount())
			}
			if got := mustEdge(t, g, "A", "B").Weight; got != tt.want {
				t.Errorf("Weight = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeNoWeightCountsMultiplicity(t *testing.T) {
	g := graph.New()
	rows := [][]string{{"A", "B"}, {"A", "B"}, {"B", "A"}}
	apply(t, g, metadata.NewRegistry(), EdgeIgnoreMetadata(0, 1, NoWeight), rows)
	if got := mustEdge(t, g, "A", "B").Weight; got != 3 {
		t.Errorf("Weight = %v, want 3 (row multiplicity)", got)
	}
}

func TestEdgeSkipsShortRows(t *testing.T) {
	g := graph.New()
	rows := [][]string{
		{"A", "B", "1"},
		{"C"},         // too short for target
		{"D", "E"},    // too short for weight
		{},            // empty
		{"A", "B", "2"},
	}
	apply(t, g, metadata.NewRegistry(), EdgeIgnoreMetadata(0, 1, 2), rows)
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if g.VertexCount() != 2 {
		t.Errorf("VertexCount = %d, want 2 (short rows create nothing)", g.VertexCount())
	}
	if got := mustEdge(t, g, "A", "B").Weight; got != 3 {
		t.Errorf("Weight = %v, want 3", got)
	}
}

func TestEdgeBadWeightAborts(t *testing.T) {
	g := graph.New()
	fn := EdgeIgnoreMetadata(0, 1, 2).Configure(g, metadata.NewRegistry())
	if err := fn([]string{"A", "B", "heavy"}); err == nil {
		t.Error("non-numeric weight did not error")
	}
}

func TestEdgeSingleMetadataLastWins(t *testing.T) {
	headers := []string{"src", "dst", "w", "color", "year"}
	g := graph.New()
	types := metadata.NewRegistry()
	rows := [][]string{
		{"A", "B", "1", "red", "1999"},
		{"A", "B", "2", "blue", "2004"},
	}
	apply(t, g, types, EdgeSingleMetadata(headers, 0, 1, 2, nil), rows)

	e := mustEdge(t, g, "A", "B")
	if e.Weight != 3 {
		t.Errorf("Weight = %v, want 3", e.Weight)
	}
	if e.Meta["color"] != "blue" || e.Meta["year"] != "2004" {
		t.Errorf("Meta = %v, want later row to win", e.Meta)
	}
	// Core columns never land in metadata.
	for _, k := range []string{"src", "dst", "w"} {
		if _, ok := e.Meta[k]; ok {
			t.Errorf("core column %q leaked into metadata", k)
		}
	}
	if got := types.Get("year"); got != metadata.TypeInt {
		t.Errorf("registry type for year = %v, want TypeInt", got)
	}
	if got := types.Get("color"); got != metadata.TypeString {
		t.Errorf("registry type for color = %v, want TypeString", got)
	}
}

func TestEdgeSingleMetadataOrderDependence(t *testing.T) {
	headers := []string{"src", "dst", "color"}
	first := [][]string{{"A", "B", "red"}, {"A", "B", "blue"}}
	second := [][]string{{"A", "B", "blue"}, {"A", "B", "red"}}

	g1 := graph.New()
	apply(t, g1, metadata.NewRegistry(), EdgeSingleMetadata(headers, 0, 1, NoWeight, nil), first)
	g2 := graph.New()
	apply(t, g2, metadata.NewRegistry(), EdgeSingleMetadata(headers, 0, 1, NoWeight, nil), second)

	if mustEdge(t, g1, "A", "B").Meta["color"] == mustEdge(t, g2, "A", "B").Meta["color"] {
		t.Error("reordering rows did not change the surviving value")
	}
}

func TestEdgeSingleMetadataIgnoredValues(t *testing.T) {
	headers := []string{"src", "dst", "note"}
	g := graph.New()
	rows := [][]string{{"A", "B", "NULL"}, {"A", "B", "fine"}}
	apply(t, g, metadata.NewRegistry(), EdgeSingleMetadata(headers, 0, 1, NoWeight, []string{"NULL"}), rows)

	e := mustEdge(t, g, "A", "B")
	if e.Meta["note"] != "fine" {
		t.Errorf("Meta[note] = %v, want %q", e.Meta["note"], "fine")
	}
}

func TestEdgeCollectionMetadataKeepsAllRows(t *testing.T) {
	headers := []string{"src", "dst", "w", "color"}
	g := graph.New()
	types := metadata.NewRegistry()
	rows := [][]string{
		{"A", "B", "1", "red"},
		{"A", "B", "2", "blue"},
		{"B", "A", "4", "green"},
	}
	apply(t, g, types, EdgeCollectionMetadata(headers, 0, 1, 2, nil), rows)

	e := mustEdge(t, g, "A", "B")
	if e.Weight != 7 {
		t.Errorf("Weight = %v, want 7", e.Weight)
	}
	list, ok := e.Meta[AttributesKey].([]graph.Metadata)
	if !ok {
		t.Fatalf("Meta[%q] = %T, want []graph.Metadata", AttributesKey, e.Meta[AttributesKey])
	}
	if len(list) != 3 {
		t.Fatalf("attribute list length = %d, want 3 (one per contributing row)", len(list))
	}
	if list[0]["color"] != "red" || list[2]["color"] != "green" {
		t.Errorf("attribute list order broken: %v", list)
	}
}

func TestVertexSingleMetadata(t *testing.T) {
	g := graph.New()
	if _, err := g.EnsureEdge("A", "B"); err != nil {
		t.Fatal(err)
	}
	types := metadata.NewRegistry()
	headers := []string{"id", "kind", "rank"}
	rows := [][]string{
		{"A", "person", "1"},
		{"A", "robot", "2"},
		{"Z", "ghost", "9"}, // unknown vertex, dropped
	}
	apply(t, g, types, VertexSingleMetadata(headers, 0, nil), rows)

	a, _ := g.Vertex("A")
	if a.Meta["kind"] != "robot" || a.Meta["rank"] != "2" {
		t.Errorf("Meta = %v, want later row to win", a.Meta)
	}
	if _, ok := a.Meta["id"]; ok {
		t.Error("vertex ID column leaked into metadata")
	}
	if g.HasVertex("Z") {
		t.Error("vertex projection created a vertex")
	}
	if got := types.Get("rank"); got != metadata.TypeInt {
		t.Errorf("registry type for rank = %v, want TypeInt", got)
	}
}

func TestVertexCollectionMetadata(t *testing.T) {
	g := graph.New()
	if _, err := g.EnsureEdge("A", "B"); err != nil {
		t.Fatal(err)
	}
	headers := []string{"id", "tag"}
	rows := [][]string{{"A", "x"}, {"A", "y"}, {"B", "z"}}
	apply(t, g, metadata.NewRegistry(), VertexCollectionMetadata(headers, 0, nil), rows)

	a, _ := g.Vertex("A")
	list, ok := a.Meta[AttributesKey].([]graph.Metadata)
	if !ok || len(list) != 2 {
		t.Fatalf("Meta[%q] = %v, want 2 entries", AttributesKey, a.Meta[AttributesKey])
	}
	b, _ := g.Vertex("B")
	if list, _ := b.Meta[AttributesKey].([]graph.Metadata); len(list) != 1 {
		t.Errorf("B attribute list = %v, want 1 entry", b.Meta[AttributesKey])
	}
}

func TestBuilderFunc(t *testing.T) {
	calls := 0
	b := BuilderFunc(func(g *graph.Graph, types *metadata.Registry) RowFunc {
		return func(row []string) error {
			calls++
			return nil
		}
	})
	fn := b.Configure(graph.New(), metadata.NewRegistry())
	if err := fn(nil); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
