package catalog

import (
	"strings"

	"unigang/annex/internal/models"
)

// AllCampuses is the campus filter sentinel that matches every listing.
const AllCampuses = "All"

// Filter narrows a collection by free text and campus. The zero value matches everything.
type Filter struct {
	Query  string
	Campus string
}

func (f Filter) normalized() Filter {
	f.Query = strings.TrimSpace(f.Query)
	f.Campus = strings.TrimSpace(f.Campus)
	if strings.EqualFold(f.Campus, AllCampuses) {
		f.Campus = ""
	}
	return f
}

// IsZero reports whether f matches every listing.
func (f Filter) IsZero() bool {
	n := f.normalized()
	return n.Query == "" && n.Campus == ""
}

// Match applies both predicates: a case-insensitive substring of the title or
// the address, and an exact campus match.
func (f Filter) Match(l models.Listing) bool {
	n := f.normalized()
	if n.Campus != "" && l.Campus != n.Campus {
		return false
	}
	if n.Query == "" {
		return true
	}
	q := strings.ToLower(n.Query)
	return strings.Contains(strings.ToLower(l.Title), q) ||
		strings.Contains(strings.ToLower(l.Address), q)
}

// Apply returns the listings matching f in their original order. The input is not modified.
func Apply(items []models.Listing, f Filter) []models.Listing {
	out := make([]models.Listing, 0, len(items))
	for _, l := range items {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}
