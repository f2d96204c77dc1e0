package detect

import (
	"strings"
	"testing"

	"github.com/matzehuels/graphweave/pkg/dataset"
)

func newDataset(t *testing.T, in string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(strings.NewReader(in), dataset.Options{
		HasHeaders: dataset.Bool(true),
		Dialect:    &dataset.DialectExcel,
	})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func TestFindEdgesScoring(t *testing.T) {
	// src and dst draw from the same vertex population; note does not.
	in := "src,dst,note\n" +
		"a,b,hello\n" +
		"b,c,world\n" +
		"c,a,again\n"
	props, err := FindEdges(newDataset(t, in), Options{})
	if err != nil {
		t.Fatalf("FindEdges: %v", err)
	}

	best, ok := props.BestPair()
	if !ok {
		t.Fatal("no pairs returned")
	}
	if best.Source != "dst" || best.Target != "src" {
		t.Errorf("best pair = %s/%s, want dst/src (lexicographic)", best.Source, best.Target)
	}
	if best.Score != 3 {
		t.Errorf("best score = %d, want 3 shared values", best.Score)
	}
	if len(props.Pairs) != 3 {
		t.Errorf("pairs = %d, want 3", len(props.Pairs))
	}
	// Pairs are sorted best first.
	for i := 1; i < len(props.Pairs); i++ {
		if props.Pairs[i].Score > props.Pairs[i-1].Score {
			t.Errorf("pairs not sorted by score: %v", props.Pairs)
		}
	}
}

func TestFindEdgesValueSamples(t *testing.T) {
	in := "col,other\n" +
		"x,1\nx,2\nx,3\ny,4\ny,5\nz,6\n"
	props, err := FindEdges(newDataset(t, in), Options{CommonValues: 2, RareValues: 2})
	if err != nil {
		t.Fatalf("FindEdges: %v", err)
	}

	common := props.CommonValues["col"]
	if len(common) != 2 {
		t.Fatalf("common = %v, want 2 entries", common)
	}
	if common[0].Value != "x" || common[0].Count != 3 {
		t.Errorf("most common = %v, want x:3", common[0])
	}

	rare := props.RareValues["col"]
	if len(rare) != 2 {
		t.Fatalf("rare = %v, want 2 entries", rare)
	}
	if rare[0].Value != "z" || rare[0].Count != 1 {
		t.Errorf("rarest = %v, want z:1", rare[0])
	}
}

func TestFindEdgesShortRows(t *testing.T) {
	in := "a,b\nx,y\nx\n"
	props, err := FindEdges(newDataset(t, in), Options{})
	if err != nil {
		t.Fatalf("FindEdges: %v", err)
	}
	if got := props.CommonValues["a"][0]; got.Value != "x" || got.Count != 2 {
		t.Errorf("column a top value = %v, want x:2", got)
	}
	if got := len(props.CommonValues["b"]); got != 1 {
		t.Errorf("column b distinct values = %d, want 1", got)
	}
}

func TestBestPairEmpty(t *testing.T) {
	props := &GraphProperties{}
	if _, ok := props.BestPair(); ok {
		t.Error("BestPair on empty properties returned ok")
	}
}
