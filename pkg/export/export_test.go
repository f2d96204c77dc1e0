package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	// Insert out of lexicographic order on purpose.
	for _, pair := range [][2]string{{"c", "a"}, {"a", "b"}} {
		e, err := g.EnsureEdge(pair[0], pair[1])
		if err != nil {
			t.Fatal(err)
		}
		e.Weight = 2
	}
	if err := g.SetVertexMeta("a", "kind", "person"); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewDocumentSorted(t *testing.T) {
	doc := NewDocument(sampleGraph(t), nil)

	var ids []string
	for _, v := range doc.Vertices {
		ids = append(ids, v.ID)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Errorf("vertex order = %v, want a,b,c", ids)
	}
	if doc.Edges[0].Source != "a" || doc.Edges[0].Target != "b" {
		t.Errorf("edge order starts with %s-%s, want a-b", doc.Edges[0].Source, doc.Edges[0].Target)
	}
}

func TestMarshalJSONDeterministic(t *testing.T) {
	types := metadata.NewRegistry()
	types.Observe("kind", "person")

	first, err := MarshalJSON(sampleGraph(t), types)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	second, err := MarshalJSON(sampleGraph(t), types)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same graph produced different bytes")
	}

	var doc Document
	if err := json.Unmarshal(first, &doc); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if doc.AttributeTypes["kind"] != "string" {
		t.Errorf("attribute_types[kind] = %q, want string", doc.AttributeTypes["kind"])
	}
	if doc.Directed {
		t.Error("directed = true for undirected graph")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleGraph(t), nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("output missing trailing newline")
	}
}

func TestDocumentGraphRoundTrip(t *testing.T) {
	doc := NewDocument(sampleGraph(t), nil)
	g, err := doc.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if g.VertexCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("rebuilt graph = %d vertices, %d edges, want 3, 2", g.VertexCount(), g.EdgeCount())
	}
	e, ok := g.Edge("c", "a")
	if !ok || e.Weight != 2 {
		t.Errorf("edge c-a = %v, %v, want weight 2", e, ok)
	}
	v, _ := g.Vertex("a")
	if v.Meta["kind"] != "person" {
		t.Errorf("vertex a metadata lost: %v", v.Meta)
	}
}

func TestToDOTUndirected(t *testing.T) {
	dot := ToDOT(sampleGraph(t), DOTOptions{Weights: true})
	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("prefix = %q, want graph G", dot[:20])
	}
	if !strings.Contains(dot, `"c" -- "a" [label="2"]`) {
		t.Errorf("missing weighted undirected edge in:\n%s", dot)
	}
	if strings.Contains(dot, "->") {
		t.Error("undirected DOT contains directed arrows")
	}
}

func TestToDOTDirected(t *testing.T) {
	g := graph.New(graph.Directed())
	if _, err := g.EnsureEdge("a", "b"); err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(g, DOTOptions{})
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Error("directed graph did not emit digraph")
	}
	if !strings.Contains(dot, `"a" -> "b";`) {
		t.Errorf("missing directed edge in:\n%s", dot)
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	dot := ToDOT(sampleGraph(t), DOTOptions{Detailed: true})
	if !strings.Contains(dot, "kind: person") {
		t.Errorf("detailed label missing metadata in:\n%s", dot)
	}
}
