// Package crawler implements same-site page discovery.
//
// # Architecture
//
// Discovery is a breadth-first traversal rooted at a start URL. The
// Discoverer owns a FIFO queue and a visited set for the duration of one
// Discover call; both are discarded when the call returns, so independent
// discoveries of different sites can run concurrently without shared
// state.
//
// Design decision: We implement our own traversal rather than using a
// crawling framework because:
//  1. The frontier policy (depth bound, page bound, fixed politeness
//     delay) is the whole algorithm; a framework would hide it
//  2. Per-fetch failures must be absorbed, never aborting the traversal
//  3. The sitemap fallback needs to replace the BFS result wholesale
//
// # Sitemap fallback
//
// A BFS that terminates with three or fewer URLs is a strong signal of a
// JavaScript-rendered single-page application that anchor-following
// cannot see. In that case the Discoverer probes the conventional sitemap
// locations and, if one responds, uses its same-host <loc> entries in
// place of the BFS result.
//
// # Usage
//
//	d := crawler.New(crawler.WithMaxPages(50), crawler.WithMaxDepth(3))
//	urls, err := d.Discover(ctx, "https://example.com")
package crawler
