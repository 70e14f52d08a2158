package catalog

import "strings"

// MatchCampuses keeps the names containing q, ignoring case. AllCampuses is
// kept whenever it is present so the dropdown can always reset the filter.
func MatchCampuses(names []string, q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if q == "" || n == AllCampuses || strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
		}
	}
	return out
}

// ResolveCampus maps a short campus name such as "peradeniya" onto the one
// known campus it identifies. Exact matches win, ignoring case; otherwise a
// single substring match is used. Ambiguous or unknown input is returned as is.
func ResolveCampus(names []string, input string) string {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, AllCampuses) {
		return input
	}
	for _, n := range names {
		if strings.EqualFold(n, input) {
			return n
		}
	}
	match := ""
	lower := strings.ToLower(input)
	for _, n := range names {
		if !strings.Contains(strings.ToLower(n), lower) {
			continue
		}
		if match != "" {
			return input
		}
		match = n
	}
	if match == "" {
		return input
	}
	return match
}
