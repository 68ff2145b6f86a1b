package ingestion

import "errors"

var (
	// ErrApplierRequired is returned when an applier is not provided.
	ErrApplierRequired = errors.New("applier required")
)
