package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrEmptyTarget       = errors.New("target cannot be empty")
	ErrInvalidTarget     = errors.New("invalid target URL")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// Analysis errors
	ErrFetchFailed     = errors.New("page fetch failed")
	ErrAnalysisTimeout = errors.New("analysis timed out")

	// Catalog errors
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownFormat   = errors.New("unknown output format")

	// History errors
	ErrHistoryNotFound = errors.New("no scan history recorded")
)
