package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCampuses(t *testing.T) {
	names := []string{AllCampuses, "University of Colombo", "University of Moratuwa", "SLIIT"}

	assert.Equal(t, names, MatchCampuses(names, ""))
	assert.Equal(t, []string{AllCampuses, "University of Moratuwa"}, MatchCampuses(names, " MORA "))
	assert.Equal(t, []string{AllCampuses}, MatchCampuses(names, "oxford"))
}

func TestResolveCampus(t *testing.T) {
	names := append([]string{AllCampuses}, Universities...)

	tests := []struct {
		in, want string
	}{
		{"peradeniya", "University of Peradeniya"},
		{"University of Moratuwa", "University of Moratuwa"},
		{"sliit", "SLIIT"},
		{"all", "all"},
		{"", ""},
		// several universities contain "University of"
		{"University of", "University of"},
		{"Oxford", "Oxford"},
		// exact match beats the longer "South Eastern University"
		{"eastern university", "Eastern University"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveCampus(names, tt.in), tt.in)
	}
}
