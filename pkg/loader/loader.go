// Package loader assembles graphs from delimited text: the sequential
// assembly driver ([FromDataset]), the two-file convenience wrappers
// ([FromFile], [Load]), and the bipartite consolidator
// ([ConsolidateBipartite]).
package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphweave/pkg/dataset"
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
	"github.com/matzehuels/graphweave/pkg/projection"
)

var (
	// ErrBadBehavior is returned by [ParseBehavior] for an unrecognized
	// metadata behavior name.
	ErrBadBehavior = errors.New("unknown metadata behavior")

	// ErrBadSeparator is returned by [Load] for separators outside the
	// supported excel / excel-tab pair.
	ErrBadSeparator = errors.New("separator must be \"excel\" or \"excel-tab\"")

	// ErrNoSource is returned when a wrapper is invoked without an edge
	// source.
	ErrNoSource = errors.New("an edge source is required")
)

// Behavior selects how the built-in projections treat non-core columns.
type Behavior int

const (
	// BehaviorNone drops all non-core columns.
	BehaviorNone Behavior = iota

	// BehaviorSingle keeps one attribute map per element, last row wins.
	BehaviorSingle

	// BehaviorCollection keeps every contributing row's attribute map in an
	// ordered list.
	BehaviorCollection
)

// String returns the flag-facing name of the behavior.
func (b Behavior) String() string {
	switch b {
	case BehaviorSingle:
		return "single"
	case BehaviorCollection:
		return "collection"
	default:
		return "none"
	}
}

// ParseBehavior resolves a behavior name as used on the CLI. "simple" is
// accepted as an alias for "single".
func ParseBehavior(name string) (Behavior, error) {
	switch name {
	case "none", "":
		return BehaviorNone, nil
	case "single", "simple":
		return BehaviorSingle, nil
	case "collection":
		return BehaviorCollection, nil
	default:
		return BehaviorNone, fmt.Errorf("%w: %q", ErrBadBehavior, name)
	}
}

// FromDataset is the assembly driver: it configures the builder against the
// graph and registry, then applies the resulting row function to every row
// of ds in source order, strictly sequentially. Row order is semantic; the
// last-wins merge policies depend on it.
//
// A nil graph or registry is replaced by a fresh instance. The same
// instances are returned, so repeated calls against the same graph
// accumulate.
func FromDataset(ds *dataset.Dataset, b projection.Builder, g *graph.Graph, types *metadata.Registry) (*graph.Graph, *metadata.Registry, error) {
	if g == nil {
		g = graph.New()
	}
	if types == nil {
		types = metadata.NewRegistry()
	}

	fn := b.Configure(g, types)
	for {
		row, err := ds.Next()
		if err == io.EOF {
			return g, types, nil
		}
		if err != nil {
			return g, types, fmt.Errorf("read row: %w", err)
		}
		if err := fn(row); err != nil {
			return g, types, fmt.Errorf("project row: %w", err)
		}
	}
}

// discard returns l, or a muted logger when l is nil.
func discard(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard)
}
