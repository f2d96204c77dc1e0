package dataset

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
)

func readAll(t *testing.T, ds *Dataset) [][]string {
	t.Helper()
	var rows [][]string
	for {
		row, err := ds.Next()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rows = append(rows, row)
	}
}

func TestExplicitHeaderAndDialect(t *testing.T) {
	in := "source,target,weight\na,b,1\nb,c,2\n"
	ds, err := New(strings.NewReader(in), Options{
		HasHeaders: Bool(true),
		Dialect:    &DialectExcel,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, want := ds.Headers(), []string{"source", "target", "weight"}; !slices.Equal(got, want) {
		t.Errorf("Headers = %v, want %v", got, want)
	}

	rows := readAll(t, ds)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !slices.Equal(rows[0], []string{"a", "b", "1"}) {
		t.Errorf("row 0 = %v", rows[0])
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"Comma", "a,b,1\nc,d,2\ne,f,3\n", ','},
		{"Tab", "a\tb\t1\nc\td\t2\n", '\t'},
		{"Semicolon", "a;b;1\nc;d;2\n", ';'},
		{"Pipe", "a|b|1\nc|d|2\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := SniffDelimiter(strings.SplitAfter(tt.input, "\n"))
			if err != nil {
				t.Fatalf("SniffDelimiter: %v", err)
			}
			if d.Delimiter != tt.want {
				t.Errorf("Delimiter = %q, want %q", d.Delimiter, tt.want)
			}
		})
	}
}

func TestSniffDelimiterErrors(t *testing.T) {
	if _, err := SniffDelimiter(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("empty sample error = %v, want ErrNoData", err)
	}
	// One column, no delimiter anywhere.
	if _, err := SniffDelimiter([]string{"alpha\n", "beta\n"}); !errors.Is(err, ErrDialect) {
		t.Errorf("undetectable error = %v, want ErrDialect", err)
	}
}

func TestNewEmptyStream(t *testing.T) {
	if _, err := New(strings.NewReader(""), Options{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty stream error = %v, want ErrNoData", err)
	}
}

func TestHeaderDetection(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader bool
	}{
		{
			// Third column is numeric below a non-numeric first row.
			name:       "HeaderOverNumericColumn",
			input:      "source,target,weight\na,b,1\nb,c,2\nc,d,3\n",
			wantHeader: true,
		},
		{
			// Numeric values in the first row vote against a header.
			name:       "NumericFirstRow",
			input:      "a,b,1\nc,d,2\ne,f,3\n",
			wantHeader: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := New(strings.NewReader(tt.input), Options{})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			rows := readAll(t, ds)
			if tt.wantHeader {
				if got, want := ds.Headers(), []string{"source", "target", "weight"}; !slices.Equal(got, want) {
					t.Errorf("Headers = %v, want %v", got, want)
				}
				if len(rows) != 3 {
					t.Errorf("rows = %d, want 3", len(rows))
				}
			} else {
				if got, want := ds.Headers(), []string{"Attribute 0", "Attribute 1", "Attribute 2"}; !slices.Equal(got, want) {
					t.Errorf("Headers = %v, want %v", got, want)
				}
				if len(rows) != 3 {
					t.Errorf("rows = %d, want 3 (header row must not be swallowed)", len(rows))
				}
			}
		})
	}
}

func TestUseHeadersOverride(t *testing.T) {
	in := "ignored,names\na,b\nc,d\n"
	ds, err := New(strings.NewReader(in), Options{
		HasHeaders: Bool(true),
		UseHeaders: []string{"src", "dst"},
		Dialect:    &DialectExcel,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := ds.Headers(), []string{"src", "dst"}; !slices.Equal(got, want) {
		t.Errorf("Headers = %v, want %v", got, want)
	}
	// The stream's own header row is skipped.
	rows := readAll(t, ds)
	if len(rows) != 2 || rows[0][0] != "a" {
		t.Errorf("rows = %v, want data rows only", rows)
	}
}

func TestSampleLargerThanStream(t *testing.T) {
	// Fewer lines than the sample size: every line still comes back out.
	in := "x,y\n1,2\n"
	ds, err := New(strings.NewReader(in), Options{
		HasHeaders: Bool(false),
		SampleSize: 50,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rows := readAll(t, ds)
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}

func TestHeadersReturnsCopy(t *testing.T) {
	ds, err := New(strings.NewReader("h1,h2\na,b\n"), Options{
		HasHeaders: Bool(true),
		Dialect:    &DialectExcel,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := ds.Headers()
	h[0] = "mutated"
	if ds.Headers()[0] != "h1" {
		t.Error("Headers did not return a copy")
	}
}

func TestLookupDialect(t *testing.T) {
	tests := []struct {
		name    string
		want    rune
		wantErr bool
	}{
		{"excel", ',', false},
		{"excel-tab", '\t', false},
		{"unix", ',', false},
		{"fancy", 0, true},
	}
	for _, tt := range tests {
		d, err := LookupDialect(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownDialect) {
				t.Errorf("LookupDialect(%q) err = %v, want ErrUnknownDialect", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("LookupDialect(%q): %v", tt.name, err)
			continue
		}
		if d.Delimiter != tt.want {
			t.Errorf("LookupDialect(%q).Delimiter = %q, want %q", tt.name, d.Delimiter, tt.want)
		}
	}
}

func TestVariableRowLengths(t *testing.T) {
	// Short and long rows are passed through untouched; consumers decide.
	in := "a,b,1\nc,d\ne,f,3,extra\n"
	ds, err := New(strings.NewReader(in), Options{
		HasHeaders: Bool(false),
		Dialect:    &DialectExcel,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rows := readAll(t, ds)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[1]) != 2 || len(rows[2]) != 4 {
		t.Errorf("row lengths = %d,%d, want 2,4", len(rows[1]), len(rows[2]))
	}
}
