package analysis

import "strings"

// FilterSet holds optional predicates; a nil field imposes no constraint.
type FilterSet struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// IsEmpty reports whether no predicate is set.
func (f FilterSet) IsEmpty() bool {
	return f.IsPalindrome == nil &&
		f.MinLength == nil &&
		f.MaxLength == nil &&
		f.WordCount == nil &&
		f.ContainsCharacter == nil
}

// Match reports whether s satisfies every predicate in f.
func (f FilterSet) Match(s *AnalyzedString) bool {
	p := s.Properties
	if f.IsPalindrome != nil && p.IsPalindrome != *f.IsPalindrome {
		return false
	}
	if f.MinLength != nil && p.Length < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && p.Length > *f.MaxLength {
		return false
	}
	if f.WordCount != nil && p.WordCount != *f.WordCount {
		return false
	}
	// containment is checked on the stored value, not the trimmed text
	if f.ContainsCharacter != nil && !strings.Contains(s.Value, *f.ContainsCharacter) {
		return false
	}
	return true
}

// Filter returns the records matching f in their original order. The result
// is never nil.
func Filter(records []*AnalyzedString, f FilterSet) []*AnalyzedString {
	out := make([]*AnalyzedString, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
