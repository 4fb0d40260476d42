// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transfergraph/core/internal/decode"
	"github.com/transfergraph/core/internal/export"
	"github.com/transfergraph/core/internal/logging"
	"github.com/transfergraph/core/internal/parser"
)

// ErrorResponse is the JSON body of every failed API call. Code is stable
// and machine readable; Headers and Missing are set for column resolution
// failures so a client can offer a manual mapping.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Headers []string `json:"headers,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Unknown []string `json:"unknown,omitempty"`
}

const (
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeUnsupportedMediaType = "unsupported_media_type"
	CodeBodyTooLarge         = "body_too_large"
	CodeDecodeFailed         = "decode_failed"
	CodeSchemaUnresolved     = "schema_unresolved"
	CodeEmptyGraph           = "empty_graph"
	CodeInternal             = "internal_error"
)

// classify maps a pipeline error to its status code and response body.
func classify(err error) (int, ErrorResponse) {
	var schemaErr *parser.SchemaError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large", Code: CodeBodyTooLarge}
	case errors.Is(err, decode.ErrUnsupported):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: err.Error(), Code: CodeUnsupportedMediaType}
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Code:    CodeSchemaUnresolved,
			Headers: schemaErr.Headers,
			Missing: schemaErr.Missing,
			Unknown: schemaErr.Unknown,
		}
	case errors.Is(err, export.ErrEmptyGraph):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: CodeEmptyGraph}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal}
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse, err error) {
	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "status", status, "code", body.Code, "error", err)
	} else {
		logger.Warn("request rejected", "path", r.URL.Path, "status", status, "code", body.Code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode error response", "error", err)
	}
}
