package ingest

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// Document is one input text. Text is read once and dropped after
// tokenization.
type Document struct {
	ID   string
	Text string
}

// Opener opens a document by identifier.
type Opener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// ReadDocument loads a document and checks that it decodes as UTF-8.
// Failures wrap internalerr.ErrDocumentRead or internalerr.ErrEncoding.
func ReadDocument(ctx context.Context, src Opener, id string) (Document, error) {
	rc, err := src.Open(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", internalerr.ErrDocumentRead, id, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", internalerr.ErrDocumentRead, id, err)
	}

	if !utf8.Valid(data) {
		return Document{}, fmt.Errorf("%w: %s", internalerr.ErrEncoding, id)
	}

	return Document{ID: id, Text: string(data)}, nil
}
