// Package dataset turns a character stream of delimited text into a lazy,
// forward-only sequence of rows.
//
// A [Dataset] is configured with an optional header flag and an optional
// [Dialect]; whatever is left unspecified is inferred from a bounded pre-scan
// of the stream (about 50 lines by default). The pre-scan is buffered and
// replayed in front of the live reader, so no part of the input is consumed
// twice and no part is lost - but the row sequence itself is single-pass:
// once a row has been read it is gone. Callers needing two passes must
// re-open the source.
//
// Inference fails fast: an empty stream or a sample in which no delimiter
// produces consistent splits is reported as an error before any row is
// handed out.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/graphweave/pkg/metadata"
)

var (
	// ErrNoData is returned when the stream is empty and inference needs a
	// sample to work with.
	ErrNoData = errors.New("no data to sample")

	// ErrDialect is returned when no candidate delimiter splits the sample
	// consistently.
	ErrDialect = errors.New("unable to determine a consistent dialect")

	// ErrUnknownDialect is returned by [LookupDialect] for an unrecognized
	// dialect name.
	ErrUnknownDialect = errors.New("unknown dialect name")
)

// DefaultSampleSize is the number of lines pre-scanned for dialect and
// header inference when the caller does not specify a sample size.
const DefaultSampleSize = 50

// Options configures a Dataset. The zero value means "infer everything".
type Options struct {
	// HasHeaders states whether the first row is a header row. Nil means
	// detect it from the sample.
	HasHeaders *bool

	// Dialect is the delimiter convention of the stream. Nil means sniff it
	// from the sample.
	Dialect *Dialect

	// UseHeaders overrides the field names regardless of what the stream
	// contains. When set together with HasHeaders=true the stream's own
	// header row is skipped.
	UseHeaders []string

	// SampleSize is the number of lines to pre-scan for inference.
	// Defaults to DefaultSampleSize.
	SampleSize int
}

// Bool is a convenience for building the HasHeaders pointer field.
func Bool(v bool) *bool { return &v }

// Dataset is a single-pass row source over delimited text. Create one with
// [New]; read rows with [Dataset.Next] until io.EOF.
type Dataset struct {
	headers []string
	dialect Dialect
	reader  *csv.Reader
}

// New wraps r in a Dataset, performing whatever dialect and header inference
// the options leave open. Inference errors are returned before any row is
// consumed from the caller's perspective.
func New(r io.Reader, opts Options) (*Dataset, error) {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}

	buffered := bufio.NewReader(r)

	var sample []string
	if needsSample(opts) {
		var err error
		sample, err = readSampleLines(buffered, opts.SampleSize)
		if err != nil {
			return nil, err
		}
		if len(sample) == 0 {
			return nil, ErrNoData
		}
	}

	dialect := DialectExcel
	if opts.Dialect != nil {
		dialect = *opts.Dialect
	} else {
		var err error
		dialect, err = SniffDelimiter(sample)
		if err != nil {
			return nil, err
		}
	}

	// Replay the sampled lines ahead of the remaining stream.
	source := io.Reader(buffered)
	if len(sample) > 0 {
		source = io.MultiReader(strings.NewReader(strings.Join(sample, "")), buffered)
	}

	ds := &Dataset{dialect: dialect, reader: newCSVReader(source, dialect)}
	if err := ds.resolveHeaders(opts, sample); err != nil {
		return nil, err
	}
	return ds, nil
}

func newCSVReader(r io.Reader, d Dialect) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = d.Delimiter
	cr.FieldsPerRecord = -1 // rows may vary in length; consumers decide
	cr.LazyQuotes = true
	return cr
}

// resolveHeaders applies the header precedence rules: explicit UseHeaders
// beat everything, an explicit HasHeaders flag beats sniffing, and sniffing
// falls back to generated names when the sample shows no header row.
func (d *Dataset) resolveHeaders(opts Options, sample []string) error {
	switch {
	case opts.UseHeaders != nil:
		d.headers = append([]string(nil), opts.UseHeaders...)
		if opts.HasHeaders != nil && *opts.HasHeaders {
			if _, err := d.reader.Read(); err != nil && err != io.EOF {
				return fmt.Errorf("skip header row: %w", err)
			}
		}
	case opts.HasHeaders != nil && *opts.HasHeaders:
		row, err := d.reader.Read()
		if err != nil {
			return fmt.Errorf("read header row: %w", err)
		}
		d.headers = row
	case opts.HasHeaders != nil: // explicitly no headers
		d.headers = generateHeaders(sample, d.dialect)
	default:
		if SniffHeader(sample, d.dialect) {
			row, err := d.reader.Read()
			if err != nil {
				return fmt.Errorf("read header row: %w", err)
			}
			d.headers = row
		} else {
			d.headers = generateHeaders(sample, d.dialect)
		}
	}
	return nil
}

// Headers returns a copy of the ordered field names: the stream's header
// row, the caller's override, or generated "Attribute N" names.
func (d *Dataset) Headers() []string {
	return append([]string(nil), d.headers...)
}

// Dialect returns the dialect in use, whether configured or sniffed.
func (d *Dataset) Dialect() Dialect { return d.dialect }

// Next returns the next row of the stream. The header row, when present, is
// never returned. Returns io.EOF after the last row. The sequence is not
// restartable.
func (d *Dataset) Next() ([]string, error) {
	return d.reader.Read()
}

// needsSample reports whether inference requires a pre-scan: either the
// dialect is unknown, or header presence/names must be determined from data.
func needsSample(opts Options) bool {
	if opts.Dialect == nil {
		return true
	}
	if opts.UseHeaders == nil && (opts.HasHeaders == nil || !*opts.HasHeaders) {
		return true
	}
	return false
}

// readSampleLines reads up to n lines, newline included, from r.
func readSampleLines(r *bufio.Reader, n int) ([]string, error) {
	lines := make([]string, 0, n)
	for len(lines) < n {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sample input: %w", err)
		}
	}
	return lines, nil
}

// generateHeaders produces "Attribute N" names sized to the widest row in
// the sample.
func generateHeaders(sample []string, d Dialect) []string {
	width := 0
	cr := newCSVReader(strings.NewReader(strings.Join(sample, "")), d)
	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		if len(row) > width {
			width = len(row)
		}
	}
	headers := make([]string, width)
	for i := range headers {
		headers[i] = fmt.Sprintf("Attribute %d", i)
	}
	return headers
}

// SniffHeader reports whether the first sample row looks like a header.
//
// Per-column voting: a column whose later values are all numeric votes for a
// header when the first row's value is not numeric, and against when it is.
// Columns with non-numeric data fall back to a value-length comparison. The
// first row is a header when the votes come out positive.
func SniffHeader(sample []string, d Dialect) bool {
	records := parseSample(sample, d)
	if len(records) < 2 {
		return false
	}
	first, rest := records[0], records[1:]

	votes := 0
	for col, cell := range first {
		numeric, uniform, length := columnProfile(rest, col)
		switch {
		case numeric:
			if metadata.TypeOf(cell) == metadata.TypeString {
				votes++
			} else {
				votes--
			}
		case uniform:
			if len(cell) != length {
				votes++
			} else {
				votes--
			}
		}
	}
	return votes > 0
}

// columnProfile inspects one column of the non-first sample rows: whether
// every present value is numeric, and whether all values share one length.
func columnProfile(rows [][]string, col int) (numeric, uniformLength bool, length int) {
	numeric = true
	uniformLength = true
	seen := false
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := row[col]
		if !seen {
			seen = true
			length = len(v)
		} else if len(v) != length {
			uniformLength = false
		}
		if metadata.TypeOf(v) == metadata.TypeString {
			numeric = false
		}
	}
	if !seen {
		return false, false, 0
	}
	return numeric, uniformLength, length
}

func parseSample(sample []string, d Dialect) [][]string {
	cr := newCSVReader(strings.NewReader(strings.Join(sample, "")), d)
	var records [][]string
	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		records = append(records, row)
	}
	return records
}
