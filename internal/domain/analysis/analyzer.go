package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Analyze computes the properties of raw after trimming surrounding white space.
// Character counts are Unicode code points, so "héllo" has length 5.
func Analyze(raw string) (Properties, error) {
	if raw == "" {
		return Properties{}, errors.Wrap(ErrInvalidInput, "value must be a non-empty string")
	}
	if !utf8.ValidString(raw) {
		return Properties{}, errors.Wrap(ErrInvalidInput, "value must be valid UTF-8 text")
	}

	trimmed := strings.TrimSpace(raw)
	runes := []rune(trimmed)

	freq := make(map[string]int, len(runes))
	for _, r := range runes {
		freq[string(r)]++
	}

	return Properties{
		Length:                len(runes),
		IsPalindrome:          isPalindrome(runes),
		UniqueCharacters:      len(freq),
		WordCount:             len(strings.Fields(trimmed)),
		SHA256Hash:            Hash(trimmed),
		CharacterFrequencyMap: freq,
	}, nil
}

// Hash returns the lowercase hex SHA-256 digest of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// IDFor derives the record identifier for a raw value.
func IDFor(raw string) ID {
	return ID(Hash(strings.TrimSpace(raw)))
}

func isPalindrome(runes []rune) bool {
	lower := []rune(strings.ToLower(string(runes)))
	for i, j := 0, len(lower)-1; i < j; i, j = i+1, j-1 {
		if lower[i] != lower[j] {
			return false
		}
	}
	return true
}
