package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYears(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantResidual string
		wantYears    []string
	}{
		{
			name:         "NoYears",
			query:        "daniel hurst",
			wantResidual: "daniel hurst",
			wantYears:    nil,
		},
		{
			name:         "FullYear",
			query:        "thriller 1994",
			wantResidual: "thriller",
			wantYears:    []string{"1994"},
		},
		{
			name:         "YearPrefix",
			query:        "mystery 199",
			wantResidual: "mystery",
			wantYears:    []string{"199"},
		},
		{
			name:         "MultipleYears",
			query:        "1984 2001",
			wantResidual: "",
			wantYears:    []string{"1984", "2001"},
		},
		{
			name:         "YearInsideWordIgnored",
			query:        "b2020x",
			wantResidual: "b2020x",
			wantYears:    nil,
		},
		{
			name:         "TwoDigitsNotYear",
			query:        "catch 22",
			wantResidual: "catch 22",
			wantYears:    nil,
		},
		{
			name:         "YearBetweenWords",
			query:        "king 1999 shining",
			wantResidual: "king shining",
			wantYears:    []string{"1999"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			residual, years := ExtractYears(tt.query)
			assert.Equal(t, tt.wantResidual, residual)
			assert.Equal(t, tt.wantYears, years)
		})
	}
}

func TestSplitTerms(t *testing.T) {
	assert.Equal(t, []string{"daniel", "hurst"}, SplitTerms("Daniel  Hurst"))
	assert.Empty(t, SplitTerms("   "))
	assert.Empty(t, SplitTerms(""))
}

func TestMatchedTerms(t *testing.T) {
	tests := []struct {
		name  string
		value string
		terms []string
		want  []string
	}{
		{
			name:  "SubstringMatch",
			value: "Daniel Hurst",
			terms: []string{"dan", "hurst"},
			want:  []string{"dan", "hurst"},
		},
		{
			name:  "PartialMatch",
			value: "Stephen King",
			terms: []string{"king", "dan"},
			want:  []string{"king"},
		},
		{
			name:  "CaseInsensitive",
			value: "THRILLER",
			terms: []string{"thrill"},
			want:  []string{"thrill"},
		},
		{
			name:  "NoMatch",
			value: "Horror",
			terms: []string{"dan"},
			want:  []string{},
		},
		{
			name:  "NoTerms",
			value: "Horror",
			terms: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchedTerms(tt.value, tt.terms))
		})
	}
}
