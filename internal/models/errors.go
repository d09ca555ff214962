package models

import "errors"

// Error kinds returned by the scrape pipeline. Wrap with %w and test with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrConfig            = errors.New("configuration error")
	ErrAuth              = errors.New("authentication failed")
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrNoResults         = errors.New("no results rendered")
	ErrExtraction        = errors.New("card extraction failed")
	ErrPersistence       = errors.New("persistence rejected")
	ErrStoreUnavailable  = errors.New("profile store unavailable")
	ErrNotFound          = errors.New("profile not found")
)
