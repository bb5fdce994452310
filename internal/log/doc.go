// Package log provides slog loggers that redact credentials before
// output. Crawl logs quote URLs and headers verbatim, and staging sites
// routinely embed access tokens in query strings; the RedactHandler
// scrubs those so logs can be shared or shipped to aggregation as-is.
package log
