package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sitelens/sitelens/internal/model"
)

// Path patterns per role. Each matches a keyword at the start of a path
// segment (the leading slash anchors it), so "/pricing" and
// "/pricing-table" match but "/blog/5-tips-for-pricing" does not.
var (
	moneyPathPattern = regexp.MustCompile(`(?i)/(services?|pricing|products?|shop|buy|order|book(?:ing)?|schedule|appointments?|quotes?|consultations?|contact|hire|get-started|plans?|packages?|propert(?:y|ies)|listings?|menu|delivery)`)

	trustPathPattern = regexp.MustCompile(`(?i)/(about|team|testimonials?|case-stud(?:y|ies)|clients?|awards?|guarantees?|offices?)`)

	authorityPathPattern = regexp.MustCompile(`(?i)/(guides?|comparisons?|resources?|pillar|research|area-guides?)`)

	supportPathPattern = regexp.MustCompile(`(?i)/(blog|news|articles?|faqs?|legal|privacy|terms|sitemap|careers?|press)`)

	// editorialPathPattern guards the money content rule: transactional
	// phrases inside editorial sections do not make a page a money page.
	editorialPathPattern = regexp.MustCompile(`(?i)/(blog|news|article)`)

	// numericSegment matches an all-digit path segment, typical of
	// product and listing detail URLs.
	numericSegment = regexp.MustCompile(`^\d+$`)
)

// Content phrases per role, matched case-insensitively against the
// page title and cleaned body text.
var (
	moneyPhrases = []string{
		"book now", "book online", "get a quote", "request a quote",
		"pricing", "for sale", "add to cart", "buy now", "order now",
		"free consultation", "get started today",
	}

	trustPhrases = []string{
		"our story", "testimonial", "certified", "accredited",
		"award-winning", "years of experience",
	}

	authorityPhrases = []string{
		"complete guide", "ultimate guide", "step by step",
		"step-by-step", "everything you need to know",
	}
)

// roleRule is one entry in the classification decision list.
type roleRule struct {
	// name identifies the rule for debugging and tests.
	name string

	// role is assigned when the rule matches.
	role model.Role

	// matches evaluates the rule against the page's path and content.
	// content is the lowercased title plus cleaned text.
	matches func(path, content string) bool
}

// roleRules is the ordered decision list. First match wins; order is
// part of the classification contract and must not be rearranged.
var roleRules = []roleRule{
	{
		name: "money by path",
		role: model.RoleMoney,
		matches: func(path, _ string) bool {
			if path == "" || path == "/" {
				return true
			}
			return moneyPathPattern.MatchString(path)
		},
	},
	{
		name: "money by content",
		role: model.RoleMoney,
		matches: func(path, content string) bool {
			// The editorial exclusion is deliberately applied to this
			// rule only, not to the trust/authority content rules.
			if editorialPathPattern.MatchString(path) {
				return false
			}
			return containsAny(content, moneyPhrases)
		},
	},
	{
		name: "trust by path",
		role: model.RoleTrust,
		matches: func(path, _ string) bool {
			return trustPathPattern.MatchString(path)
		},
	},
	{
		name: "trust by content",
		role: model.RoleTrust,
		matches: func(_, content string) bool {
			return containsAny(content, trustPhrases)
		},
	},
	{
		name: "authority by path",
		role: model.RoleAuthority,
		matches: func(path, _ string) bool {
			return authorityPathPattern.MatchString(path)
		},
	},
	{
		name: "authority by content",
		role: model.RoleAuthority,
		matches: func(_, content string) bool {
			return containsAny(content, authorityPhrases)
		},
	},
	{
		name: "support by path",
		role: model.RoleSupport,
		matches: func(path, _ string) bool {
			return supportPathPattern.MatchString(path)
		},
	},
	{
		name: "deep slug default",
		role: model.RoleMoney,
		matches: func(path, _ string) bool {
			return deepDetailSlug(path)
		},
	},
}

// PageRole classifies a page into one of the four roles by evaluating
// the decision list top-to-bottom and returning on the first match.
// Pages matching nothing are support.
func PageRole(rawURL string, page *model.ExtractedPage) model.Role {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		// An absolute URL with no path is the home page.
		path = u.Path
		if path == "" {
			path = "/"
		}
	}

	content := strings.ToLower(page.Title + " " + page.CleanedText)

	for _, rule := range roleRules {
		if rule.matches(path, content) {
			return rule.role
		}
	}
	return model.RoleSupport
}

// containsAny reports whether content contains any of the phrases.
func containsAny(content string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

// deepDetailSlug reports whether a path looks like a product or listing
// detail page: at least two segments deep and carrying a hyphenated or
// numeric slug.
func deepDetailSlug(path string) bool {
	segments := make([]string, 0, 4)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return false
	}

	if strings.Contains(path, "-") {
		return true
	}
	for _, s := range segments {
		if numericSegment.MatchString(s) {
			return true
		}
	}
	return false
}
