package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/graphweave/pkg/dataset"
	"github.com/matzehuels/graphweave/pkg/detect"
	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/loader"
	"github.com/matzehuels/graphweave/pkg/metadata"
	"github.com/matzehuels/graphweave/pkg/pipeline"
)

// probeResponse describes an uploaded sample: what the inference machinery
// would decide about it, plus candidate edge column pairs.
type probeResponse struct {
	Dialect        string              `json:"dialect"`
	Delimiter      string              `json:"delimiter"`
	Headers        []string            `json:"headers"`
	Rows           int                 `json:"rows"`
	AttributeTypes map[string]string   `json:"attribute_types"`
	PotentialEdges []detect.ColumnPair `json:"potential_edges"`
}

// handleProbe inspects a CSV body without building a graph: sniffed
// dialect, resolved headers, per-column inferred types, and the edge column
// pair ranking.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ds, err := dataset.New(bytes.NewReader(body), dataset.Options{})
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "unreadable sample"))
		return
	}

	headers := ds.Headers()
	types := metadata.NewRegistry()
	rows := 0
	for {
		row, err := ds.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse sample"))
			return
		}
		rows++
		stop := min(len(headers), len(row))
		for i := 0; i < stop; i++ {
			types.Observe(headers[i], row[i])
		}
	}

	// Second pass over the same bytes for pair scoring.
	pairDS, err := dataset.New(bytes.NewReader(body), dataset.Options{})
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "unreadable sample"))
		return
	}
	props, err := detect.FindEdges(pairDS, detect.Options{})
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "score columns"))
		return
	}

	attrTypes := make(map[string]string, types.Len())
	for attr, typ := range types.Attributes() {
		attrTypes[attr] = typ.String()
	}

	writeJSON(w, http.StatusOK, probeResponse{
		Dialect:        ds.Dialect().Name,
		Delimiter:      string(ds.Dialect().Delimiter),
		Headers:        headers,
		Rows:           rows,
		AttributeTypes: attrTypes,
		PotentialEdges: props.Pairs,
	})
}

// handleLoad turns a CSV body into a graph document. Column layout and
// behavior come from query parameters; the body is the edge list.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts, err := loadOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.ExecuteReader(r.Context(), bytes.NewReader(body), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("loaded graph via API",
		"vertices", result.Stats.VertexCount,
		"edges", result.Stats.EdgeCount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts["json"])
}

// handleConsolidate derives a unipartite graph from a (vertex, pivot) CSV
// body.
func (s *Server) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	vertexCol, err := intParam(q.Get("vertex"), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	pivotCol, err := intParam(q.Get("pivot"), 1)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.ConsolidateReader(r.Context(), bytes.NewReader(body), pipeline.ConsolidateOptions{
		Source:       "request-body",
		VertexColumn: vertexCol,
		PivotColumn:  pivotCol,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts["json"])
}

// loadOptions extracts pipeline options from query parameters.
func loadOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Source: "request-body"}

	var err error
	if opts.SourceColumn, err = intParam(q.Get("source"), 0); err != nil {
		return opts, err
	}
	if opts.TargetColumn, err = intParam(q.Get("target"), 1); err != nil {
		return opts, err
	}
	if raw := q.Get("weight"); raw != "" {
		w, err := intParam(raw, 0)
		if err != nil {
			return opts, err
		}
		opts.WeightColumn = &w
	}
	behavior, err := loader.ParseBehavior(q.Get("behavior"))
	if err != nil {
		return opts, apperrors.Wrap(apperrors.ErrCodeInvalidBehavior, err, "behavior parameter")
	}
	opts.EdgeBehavior = behavior
	opts.Directed = q.Get("directed") == "true"
	opts.Dialect = q.Get("dialect")
	if raw := q.Get("headers"); raw != "" {
		has := raw == "true"
		opts.HasHeaders = &has
	}
	return opts, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "not an integer: %q", raw)
	}
	return v, nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "empty request body")
	}
	if len(body) > MaxBodyBytes {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "body exceeds %d bytes", MaxBodyBytes)
	}
	return body, nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidColumn,
		apperrors.ErrCodeInvalidDialect, apperrors.ErrCodeInvalidBehavior,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidSource:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound, apperrors.ErrCodeGraphNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}

	var resp errorResponse
	resp.Error.Code = string(code)
	if resp.Error.Code == "" {
		resp.Error.Code = string(apperrors.ErrCodeInternal)
	}
	resp.Error.Message = apperrors.UserMessage(err)
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
