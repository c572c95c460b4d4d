package httpserver

import (
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

// parseFilters coerces the list query parameters into a FilterSet. Absent or
// empty parameters impose no constraint.
func parseFilters(q url.Values) (domain.FilterSet, error) {
	var f domain.FilterSet

	if v := q.Get("is_palindrome"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.Wrapf(domain.ErrInvalidInput, "is_palindrome must be true or false, got %q", v)
		}
		f.IsPalindrome = &b
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_length", &f.MinLength},
		{"max_length", &f.MaxLength},
		{"word_count", &f.WordCount},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.Wrapf(domain.ErrInvalidInput, "%s must be a non-negative integer, got %q", p.name, v)
		}
		*p.dst = &n
	}

	if v := q.Get("contains_character"); v != "" {
		if utf8.RuneCountInString(v) != 1 {
			return f, errors.Wrapf(domain.ErrInvalidInput, "contains_character must be a single character, got %q", v)
		}
		f.ContainsCharacter = &v
	}

	return f, nil
}

// pathValue returns the {value} route parameter. chi matches on RawPath when
// the request was escaped, so the parameter is unescaped here.
func pathValue(req *http.Request) (string, error) {
	v := chi.URLParam(req, "value")
	if req.URL.RawPath == "" {
		return v, nil
	}
	unescaped, err := url.PathUnescape(v)
	if err != nil {
		return "", errors.Wrapf(domain.ErrInvalidInput, "bad path value %q", v)
	}
	return unescaped, nil
}
