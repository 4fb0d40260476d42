// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/transfergraph/core/internal/decode"
	"github.com/transfergraph/core/internal/export"
	"github.com/transfergraph/core/internal/logging"
	"github.com/transfergraph/core/internal/models"
	"github.com/transfergraph/core/internal/parser"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 32 << 20

// GraphHandler serves POST /graph: the body is a transfer table (text/csv or
// application/json) and the response is the network document. Query
// parameters from, to and amount override column detection; pretty=true
// indents the output.
type GraphHandler struct {
	opts         parser.Options
	maxBodyBytes int64
}

func NewGraphHandler(opts parser.Options, maxBodyBytes int64) *GraphHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &GraphHandler{opts: opts, maxBodyBytes: maxBodyBytes}
}

func (h *GraphHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, r, http.StatusMethodNotAllowed,
			ErrorResponse{Error: "Method not allowed", Code: CodeMethodNotAllowed}, nil)
		return
	}
	defer r.Body.Close()

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}
	decodeTable, err := decode.ForMediaType(contentType)
	if err != nil {
		status, body := classify(err)
		respondError(w, r, status, body, err)
		return
	}

	table, err := decodeTable(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, body := classify(err)
			respondError(w, r, status, body, err)
			return
		}
		respondError(w, r, http.StatusBadRequest,
			ErrorResponse{Error: fmt.Sprintf("invalid table: %v", err), Code: CodeDecodeFailed}, err)
		return
	}

	query := r.URL.Query()
	opts := h.opts
	opts.Override = models.ColumnMapping{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Amount: query.Get("amount"),
	}
	opts.Logger = logging.FromContext(r.Context())

	summary, err := parser.Ingest(r.Context(), table, opts)
	if err != nil {
		status, body := classify(err)
		respondError(w, r, status, body, err)
		return
	}

	network, err := export.FromSummary(summary)
	if err != nil {
		status, body := classify(err)
		respondError(w, r, status, body, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)
	if query.Get("pretty") == "true" {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(network); err != nil {
		opts.Logger.Error("encode response", "error", err)
	}
}
