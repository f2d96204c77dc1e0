// Package detect inspects a dataset to guess which column pair holds the
// edge list. Every column pair is scored by the number of distinct values
// the two columns share; columns that reference each other (sources and
// targets of the same vertex population) score high, free-text columns score
// near zero. The result also carries common and rare value samples per
// column so an interactive picker can show what each column contains.
package detect

import (
	"fmt"
	"io"
	"slices"

	"github.com/matzehuels/graphweave/pkg/dataset"
)

// DefaultValueSamples is the number of common and rare values reported per
// column when the caller does not say otherwise.
const DefaultValueSamples = 20

// Options bounds the per-column value samples in the result.
type Options struct {
	// CommonValues is the number of highest-frequency values to report per
	// column. Defaults to DefaultValueSamples.
	CommonValues int

	// RareValues is the number of lowest-frequency values to report per
	// column. Defaults to DefaultValueSamples.
	RareValues int
}

// ValueCount is one observed value and its row frequency.
type ValueCount struct {
	Value string
	Count int
}

// ColumnPair is a candidate (source, target) column pair. Source and Target
// are stored in lexicographic order so results are deterministic.
type ColumnPair struct {
	Source string
	Target string

	// Score is the number of distinct values appearing in both columns.
	Score int
}

// GraphProperties is the full detection report for one dataset.
type GraphProperties struct {
	// Columns are the dataset's header names in column order.
	Columns []string

	// Pairs holds every column pair, best score first.
	Pairs []ColumnPair

	// CommonValues and RareValues sample each column's value distribution:
	// highest-frequency values first and lowest-frequency values first
	// respectively.
	CommonValues map[string][]ValueCount
	RareValues   map[string][]ValueCount
}

// BestPair returns the top-scoring column pair, or false when the dataset
// has fewer than two columns.
func (p *GraphProperties) BestPair() (ColumnPair, bool) {
	if len(p.Pairs) == 0 {
		return ColumnPair{}, false
	}
	return p.Pairs[0], true
}

// columnCounter tracks value frequencies for one column, remembering first
// appearance order so ties break deterministically.
type columnCounter struct {
	counts map[string]int
	order  []string
}

func newColumnCounter() *columnCounter {
	return &columnCounter{counts: make(map[string]int)}
}

func (c *columnCounter) observe(value string) {
	if _, ok := c.counts[value]; !ok {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// ranked returns the column's values ordered by descending frequency, ties
// in first appearance order.
func (c *columnCounter) ranked() []ValueCount {
	out := make([]ValueCount, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, ValueCount{Value: v, Count: c.counts[v]})
	}
	slices.SortStableFunc(out, func(a, b ValueCount) int { return b.Count - a.Count })
	return out
}

// FindEdges consumes the dataset and scores every column pair by shared
// distinct values. The dataset is fully drained; like all row sources it is
// single-pass, so callers wanting to ingest afterwards must re-open the
// source.
func FindEdges(ds *dataset.Dataset, opts Options) (*GraphProperties, error) {
	if opts.CommonValues <= 0 {
		opts.CommonValues = DefaultValueSamples
	}
	if opts.RareValues <= 0 {
		opts.RareValues = DefaultValueSamples
	}

	headers := ds.Headers()
	counters := make(map[string]*columnCounter, len(headers))
	for _, h := range headers {
		counters[h] = newColumnCounter()
	}

	for {
		row, err := ds.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		stop := min(len(headers), len(row))
		for i := 0; i < stop; i++ {
			counters[headers[i]].observe(row[i])
		}
	}

	props := &GraphProperties{
		Columns:      headers,
		Pairs:        scorePairs(headers, counters),
		CommonValues: make(map[string][]ValueCount, len(headers)),
		RareValues:   make(map[string][]ValueCount, len(headers)),
	}
	for _, h := range headers {
		ranked := counters[h].ranked()
		props.CommonValues[h] = head(ranked, opts.CommonValues)
		props.RareValues[h] = tailReversed(ranked, opts.RareValues)
	}
	return props, nil
}

// scorePairs scores every unordered column pair by the number of distinct
// values both columns contain, best first.
func scorePairs(headers []string, counters map[string]*columnCounter) []ColumnPair {
	var pairs []ColumnPair
	for i := 0; i < len(headers); i++ {
		for j := i + 1; j < len(headers); j++ {
			a, b := headers[i], headers[j]
			if b < a {
				a, b = b, a
			}
			pairs = append(pairs, ColumnPair{Source: a, Target: b, Score: shared(counters[headers[i]], counters[headers[j]])})
		}
	}
	slices.SortStableFunc(pairs, func(a, b ColumnPair) int { return b.Score - a.Score })
	return pairs
}

// shared counts distinct values present in both columns.
func shared(a, b *columnCounter) int {
	n := 0
	for v := range a.counts {
		if _, ok := b.counts[v]; ok {
			n++
		}
	}
	return n
}

func head(vals []ValueCount, n int) []ValueCount {
	if len(vals) > n {
		vals = vals[:n]
	}
	return slices.Clone(vals)
}

// tailReversed takes the n lowest-frequency values, rarest first.
func tailReversed(vals []ValueCount, n int) []ValueCount {
	if len(vals) > n {
		vals = vals[len(vals)-n:]
	}
	out := slices.Clone(vals)
	slices.Reverse(out)
	return out
}
