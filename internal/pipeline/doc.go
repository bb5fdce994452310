// Package pipeline orchestrates a full site crawl: one discovery pass
// followed by sequential per-URL content extraction.
//
// A single crawl has no internal parallelism. Extraction visits URLs in
// discovery order with a fixed politeness delay between pages, so the
// wall-clock cost is O(pages x (fetch latency + delay)). Throttling is
// a fixed delay rather than a token bucket: this is a politeness
// setting, not a throughput optimization.
//
// Multiple independent sites can be crawled concurrently through the
// BatchProcessor, which bounds concurrency with an errgroup limit while
// each site's crawl stays internally sequential.
package pipeline
