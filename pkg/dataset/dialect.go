package dataset

import (
	"fmt"
	"strings"
)

// Dialect is the delimiter convention of a delimited text stream. Quoting
// always follows RFC 4180 double-quote rules; only the field separator
// varies in practice across the files this package ingests.
type Dialect struct {
	// Name is a human-readable identifier ("excel", "excel-tab", ...).
	// Sniffed dialects are named after their delimiter.
	Name string

	// Delimiter separates fields within a row.
	Delimiter rune
}

// Named dialects, matching the conventions most tooling emits.
var (
	// DialectExcel is comma-separated (the common CSV case).
	DialectExcel = Dialect{Name: "excel", Delimiter: ','}

	// DialectExcelTab is tab-separated (TSV).
	DialectExcelTab = Dialect{Name: "excel-tab", Delimiter: '\t'}

	// DialectUnix is comma-separated; kept as a distinct name for parity
	// with configuration files that ask for it.
	DialectUnix = Dialect{Name: "unix", Delimiter: ','}
)

// LookupDialect resolves a dialect name. Returns ErrUnknownDialect for names
// outside the known set.
func LookupDialect(name string) (Dialect, error) {
	switch name {
	case DialectExcel.Name:
		return DialectExcel, nil
	case DialectExcelTab.Name:
		return DialectExcelTab, nil
	case DialectUnix.Name:
		return DialectUnix, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// delimiterCandidates is the precedence-ordered set of separators the
// sniffer considers.
var delimiterCandidates = []rune{',', '\t', ';', '|', ':'}

// minConsistency is the fraction of sample lines that must agree on a
// delimiter's per-line count for the delimiter to qualify.
const minConsistency = 0.8

// SniffDelimiter infers the delimiter from sample lines by consistency
// scoring: for each candidate, the modal number of occurrences per line is
// computed, and the candidate qualifies when that mode is nonzero and at
// least 80% of lines agree on it. Among qualifying candidates the most
// consistent wins, ties broken by candidate precedence (comma first).
//
// Returns ErrNoData for an empty sample and ErrDialect when no candidate
// qualifies.
func SniffDelimiter(sample []string) (Dialect, error) {
	lines := nonEmptyLines(sample)
	if len(lines) == 0 {
		return Dialect{}, ErrNoData
	}

	best := Dialect{}
	bestScore := 0.0
	for _, cand := range delimiterCandidates {
		mode, consistency := countConsistency(lines, cand)
		if mode == 0 || consistency < minConsistency {
			continue
		}
		if consistency > bestScore {
			best = Dialect{Name: fmt.Sprintf("sniffed(%q)", cand), Delimiter: cand}
			bestScore = consistency
		}
	}
	if bestScore == 0 {
		return Dialect{}, ErrDialect
	}
	return best, nil
}

// countConsistency returns the modal per-line occurrence count of delim and
// the fraction of lines showing that count.
func countConsistency(lines []string, delim rune) (mode int, consistency float64) {
	counts := make(map[int]int)
	for _, line := range lines {
		counts[strings.Count(line, string(delim))]++
	}
	modeLines := 0
	for count, n := range counts {
		if n > modeLines || (n == modeLines && count > mode) {
			mode = count
			modeLines = n
		}
	}
	return mode, float64(modeLines) / float64(len(lines))
}

func nonEmptyLines(sample []string) []string {
	out := make([]string, 0, len(sample))
	for _, line := range sample {
		if strings.TrimRight(line, "\r\n") != "" {
			out = append(out, line)
		}
	}
	return out
}
