package spreadsheet

import "errors"

// Ingest error codes surfaced through the HTTP error envelope
const (
	ErrCodeIngestInvalidFile     = "ERR_INGEST_INVALID_FILE"
	ErrCodeIngestEmptyFile       = "ERR_INGEST_EMPTY_FILE"
	ErrCodeIngestInvalidEncoding = "ERR_INGEST_INVALID_ENCODING"
	ErrCodeIngestMissingHeader   = "ERR_INGEST_MISSING_HEADER"
)

// Common ingest errors. Any of these aborts the run with nothing partially
// applied; ingestion has no side effects beyond reading the supplied bytes.
var (
	// ErrEmptyFile is returned when the file has no content
	ErrEmptyFile = errors.New("spreadsheet: file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("spreadsheet: invalid file encoding")

	// ErrMissingHeader is returned when no header row follows the banner region
	ErrMissingHeader = errors.New("spreadsheet: missing header row")
)
