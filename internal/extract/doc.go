// Package extract turns a single URL into a normalized ExtractedPage.
//
// # Architecture
//
// Extraction is a fallback chain over two independently-failing
// strategies behind one interface:
//
//   - ReaderStrategy delegates to a remote markdown-extraction reader
//     service and parses its plain-markdown response.
//   - LocalStrategy fetches the page directly and parses the DOM.
//
// The chain is composed at Extractor construction time. When the reader
// is enabled it runs first and any error (non-2xx, timeout, network
// failure) hands the URL to the local strategy. When the reader is
// disabled the local strategy runs alone.
//
// # Totality
//
// Extractor.ScrapePage never returns an error. If every strategy fails,
// the result is a record with StatusCode 0, zeroed content fields, and
// Error carrying the last failure reason. Callers therefore process
// crawl results without exception handling.
package extract
