package extract

import "errors"

// Extraction error taxonomy. These never escape ScrapePage; they exist
// so the fallback chain and tests can distinguish failure causes with
// errors.Is before the final error string lands in the page record.
var (
	// ErrReaderService indicates the remote reader responded non-2xx,
	// timed out, or was unreachable.
	ErrReaderService = errors.New("reader service request failed")

	// ErrNonHTMLContent indicates the local strategy fetched a response
	// whose content type is not HTML.
	ErrNonHTMLContent = errors.New("response content type is not text/html")

	// ErrNetwork indicates a fetch failure or timeout on the local path.
	ErrNetwork = errors.New("network request failed")
)
