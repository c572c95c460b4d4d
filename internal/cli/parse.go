package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Show the filters a natural-language query maps to",
		Long: `Show the filters a natural-language query maps to.

Recognized phrases: "palindromic", "single word", "longer than N characters",
"containing [the letter] x" and "first vowel".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			f, err := domain.ParseNaturalLanguage(query)
			if err != nil {
				if hint := errors.FlattenHints(err); hint != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "hint:", hint)
				}
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), f)
			}
			return writeFilters(cmd.OutOrStdout(), f)
		},
	}
}

func writeFilters(w io.Writer, f domain.FilterSet) error {
	if f.IsPalindrome != nil {
		fmt.Fprintf(w, "is_palindrome=%t\n", *f.IsPalindrome)
	}
	if f.MinLength != nil {
		fmt.Fprintf(w, "min_length=%d\n", *f.MinLength)
	}
	if f.MaxLength != nil {
		fmt.Fprintf(w, "max_length=%d\n", *f.MaxLength)
	}
	if f.WordCount != nil {
		fmt.Fprintf(w, "word_count=%d\n", *f.WordCount)
	}
	if f.ContainsCharacter != nil {
		_, err := fmt.Fprintf(w, "contains_character=%s\n", *f.ContainsCharacter)
		return err
	}
	return nil
}
