package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDocumentRead  = errors.New("document unreadable")
	ErrEncoding      = errors.New("document not decodable as text")
	ErrAssembly      = errors.New("identifier/result count mismatch")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrTrainer       = errors.New("trainer failed")
)
