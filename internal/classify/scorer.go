package classify

import "github.com/sitelens/sitelens/internal/model"

// Scoring constants. The score is a ranking signal, not a probability:
// only relative order within one site matters.
const (
	// wordCountBonus rewards substantive pages.
	wordCountBonus = 20

	// longFormBonus stacks on top of wordCountBonus for long pages.
	longFormBonus = 10

	// metadataBonus applies once each for a present h1, a present meta
	// description, and a developed h2 structure.
	metadataBonus = 10

	// minHeadingStructure is the h2 count that indicates a page with
	// real sectioned content rather than a thin landing page.
	minHeadingStructure = 3

	// maxLinkBonus caps the internal-link term so link-heavy navigation
	// pages cannot dominate purely on outbound link volume.
	maxLinkBonus = 20

	// substantiveWords and longFormWords are the word-count thresholds
	// for the two content bonuses.
	substantiveWords = 500
	longFormWords    = 1000
)

// PriorityScore combines a page's role and content-quality signals into
// a single non-negative ranking score. Callers rank pages within a
// project by sorting descending on this value.
func PriorityScore(page *model.ExtractedPage, role model.Role) int {
	score := role.Weight()

	if page.WordCount > substantiveWords {
		score += wordCountBonus
		if page.WordCount > longFormWords {
			score += longFormBonus
		}
	}
	if page.H1 != "" {
		score += metadataBonus
	}
	if page.MetaDescription != "" {
		score += metadataBonus
	}
	if len(page.Headings.H2) >= minHeadingStructure {
		score += metadataBonus
	}

	linkBonus := len(page.InternalLinks)
	if linkBonus > maxLinkBonus {
		linkBonus = maxLinkBonus
	}
	score += linkBonus

	return score
}
