package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(t *testing.T, values ...string) []*AnalyzedString {
	t.Helper()
	out := make([]*AnalyzedString, 0, len(values))
	for _, v := range values {
		p, err := Analyze(v)
		require.NoError(t, err)
		out = append(out, &AnalyzedString{ID: ID(p.SHA256Hash), Value: v, Properties: p})
	}
	return out
}

func values(rs []*AnalyzedString) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Value)
	}
	return out
}

func TestFilterEmptySetKeepsAllInOrder(t *testing.T) {
	rs := records(t, "zeta", "alpha", "racecar", "noon at noon")

	got := Filter(rs, FilterSet{})
	assert.Equal(t, rs, got)
}

func TestFilterNoMatchReturnsEmptySlice(t *testing.T) {
	rs := records(t, "abc", "def")

	got := Filter(rs, FilterSet{MinLength: ptr(100)})
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.NotNil(t, Filter(nil, FilterSet{}))
}

func TestFilterPredicates(t *testing.T) {
	rs := records(t, "racecar", "hello", "level", "hello world", "Anna", " padded ", "xyz")

	tests := []struct {
		name string
		set  FilterSet
		want []string
	}{
		{"palindromes", FilterSet{IsPalindrome: ptr(true)}, []string{"racecar", "level", "Anna"}},
		{"non palindromes", FilterSet{IsPalindrome: ptr(false)}, []string{"hello", "hello world", " padded ", "xyz"}},
		{"exact length five", FilterSet{MinLength: ptr(5), MaxLength: ptr(5)}, []string{"hello", "level"}},
		{"min length", FilterSet{MinLength: ptr(7)}, []string{"racecar", "hello world"}},
		{"max length", FilterSet{MaxLength: ptr(3)}, []string{"xyz"}},
		{"word count", FilterSet{WordCount: ptr(2)}, []string{"hello world"}},
		{"contains character", FilterSet{ContainsCharacter: ptr("l")}, []string{"hello", "level", "hello world"}},
		{"contains is case-sensitive", FilterSet{ContainsCharacter: ptr("a")}, []string{"racecar", "Anna", " padded "}},
		{"contains checks untrimmed value", FilterSet{ContainsCharacter: ptr(" ")}, []string{"hello world", " padded "}},
		{
			"predicates combine with AND",
			FilterSet{IsPalindrome: ptr(true), WordCount: ptr(1), MinLength: ptr(5), ContainsCharacter: ptr("e")},
			[]string{"racecar", "level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, values(Filter(rs, tt.set)))
		})
	}
}

func TestFilterSetIsEmpty(t *testing.T) {
	assert.True(t, FilterSet{}.IsEmpty())
	assert.False(t, FilterSet{IsPalindrome: ptr(false)}.IsEmpty())
	assert.False(t, FilterSet{ContainsCharacter: ptr("a")}.IsEmpty())
}
