// Package database persists crawl snapshots to SQLite so successive
// crawls of the same site can be compared. The crawl engine itself
// never touches storage; the CLI saves each finished report here and
// the compare command diffs the two most recent snapshots by content
// hash to surface added, removed, and changed pages.
//
// # Architecture
//
// Two tables: crawls holds one row per crawl with the full report as
// JSON, crawl_pages holds the per-page rows that change detection
// queries against. The JSON column keeps historical reports replayable
// without schema churn; the page rows keep diffs to a pair of indexed
// queries.
package database
