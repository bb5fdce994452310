package model

import "fmt"

// Role is the business-priority category assigned to a page.
// It is a closed set: every page maps to exactly one of the four roles.
// Roles are assigned by the classifier after a crawl completes, not
// stored on ExtractedPage, so that pages can be re-classified without
// re-crawling.
type Role string

const (
	// RoleMoney marks pages that directly drive revenue: the home page,
	// service and pricing pages, product listings, booking and contact
	// pages.
	RoleMoney Role = "money"

	// RoleTrust marks pages that build credibility: about, team,
	// testimonials, case studies, awards.
	RoleTrust Role = "trust"

	// RoleAuthority marks topical-authority content: guides,
	// comparisons, research, pillar pages.
	RoleAuthority Role = "authority"

	// RoleSupport marks everything else: blog posts, FAQ, legal pages,
	// careers, press.
	RoleSupport Role = "support"
)

// String returns the role's wire representation.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMoney, RoleTrust, RoleAuthority, RoleSupport:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored string back into a Role.
// Unknown values are an error rather than silently becoming support,
// so that database corruption surfaces instead of skewing reports.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown page role %q", s)
	}
	return r, nil
}

// Weight returns the role's contribution to the priority score.
func (r Role) Weight() int {
	switch r {
	case RoleMoney:
		return 100
	case RoleTrust:
		return 50
	default:
		return 20
	}
}
