package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
// Package-level sentinels so callers can branch with errors.Is while
// the messages stay human-readable.
var (
	// ErrNoStartURL is returned when no site was given to crawl.
	ErrNoStartURL = errors.New("no start URL specified: provide one or more site URLs")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when the depth bound is negative.
	// Depth 0 is valid and crawls only the start page.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidConcurrency is returned when the batch parallelism is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidDelay is returned when a politeness delay is negative.
	// Use 0 to disable a delay entirely.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested; only one report format can be written.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
