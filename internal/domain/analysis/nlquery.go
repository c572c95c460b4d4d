package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	rxLongerThan = regexp.MustCompile(`longer than (\d+) characters`)
	rxContaining = regexp.MustCompile(`containing (?:the letter )?([a-z])`)
)

// ParseNaturalLanguage maps a free-text query onto a FilterSet using a fixed set
// of phrase rules, applied in order over the lowercased, trimmed query:
//
//	"palindromic"                     -> is_palindrome = true
//	"single word"                     -> word_count = 1
//	"longer than N characters"        -> min_length = N+1
//	"containing [the letter] x"       -> contains_character = x
//	"first vowel"                     -> contains_character = "a"
//
// A later rule overwrites an earlier one targeting the same field.
func ParseNaturalLanguage(query string) (FilterSet, error) {
	// only an absent query is missing; blank text is parsed and matches nothing
	if query == "" {
		return FilterSet{}, ErrMissingQuery
	}
	normalized := strings.ToLower(strings.TrimSpace(query))

	var f FilterSet

	if strings.Contains(normalized, "palindromic") {
		f.IsPalindrome = ptr(true)
	}

	if strings.Contains(normalized, "single word") {
		f.WordCount = ptr(1)
	}

	if m := rxLongerThan.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == math.MaxInt {
			return FilterSet{}, errors.WithHint(
				errors.Wrapf(ErrUnparseable, "length %q out of range", m[1]),
				"use a smaller number of characters",
			)
		}
		f.MinLength = ptr(n + 1)
	}

	if m := rxContaining.FindStringSubmatch(normalized); m != nil {
		f.ContainsCharacter = ptr(m[1])
	}

	if strings.Contains(normalized, "first vowel") {
		f.ContainsCharacter = ptr("a")
	}

	if f.IsEmpty() {
		return FilterSet{}, errors.WithHint(ErrUnparseable,
			`try phrases like "single word palindromic strings" or "strings longer than 10 characters"`)
	}
	return f, nil
}

func ptr[T any](v T) *T { return &v }
