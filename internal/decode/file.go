// Package decode turns raw input documents into models.RawTable values.
// Decoders keep cells as they appear in the source; column resolution and
// typing happen later in the parser package.
package decode

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/transfergraph/core/internal/models"
)

// Func decodes one document into a table.
type Func func(io.Reader) (*models.RawTable, error)

var ErrUnsupported = errors.New("unsupported input type")

var byExtension = map[string]Func{
	".csv":  CSV,
	".txt":  CSV,
	".tsv":  CSV,
	".json": JSON,
}

var byMediaType = map[string]Func{
	"text/csv":                  CSV,
	"text/plain":                CSV,
	"text/tab-separated-values": CSV,
	"application/csv":           CSV,
	"application/json":          JSON,
}

// SupportedExtensions lists the file extensions File accepts.
var SupportedExtensions = []string{".csv", ".json", ".tsv", ".txt"}

// ForExtension returns the decoder for a file extension such as ".csv".
func ForExtension(ext string) (Func, error) {
	ext = strings.ToLower(ext)
	if fn, ok := byExtension[ext]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupported, ext, strings.Join(SupportedExtensions, ", "))
}

// ForMediaType returns the decoder for a Content-Type header value.
// Parameters such as charset are ignored.
func ForMediaType(contentType string) (Func, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupported, contentType, err)
	}
	if fn, ok := byMediaType[mediaType]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupported, mediaType)
}

// File decodes the file at path, picking the decoder from its extension.
func File(path string) (*models.RawTable, error) {
	fn, err := ForExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := fn(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return table, nil
}
