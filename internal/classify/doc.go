// Package classify assigns business-priority roles and priority scores
// to extracted pages.
//
// Both entry points are pure functions over their inputs: the same page
// always yields the same role and score, so a site can be re-classified
// and re-ranked without re-crawling.
//
// # Rule ordering
//
// Classification is an explicit ordered decision list evaluated
// top-to-bottom, returning on the first matching rule. The ordering is
// part of the contract: ambiguous pages (a "pricing guide" blog post,
// say) are resolved purely by which rule fires first, not by any kind
// of scoring vote. Reordering the list changes observable behavior.
package classify
