package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Print the properties and content hash of a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := domain.Analyze(args[0])
			if err != nil {
				return err
			}
			rec := domain.AnalyzedString{
				ID:         domain.IDFor(args[0]),
				Value:      args[0],
				Properties: props,
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), struct {
					ID         domain.ID         `json:"id"`
					Value      string            `json:"value"`
					Properties domain.Properties `json:"properties"`
				}{rec.ID, rec.Value, rec.Properties})
			}
			return writeProperties(cmd.OutOrStdout(), rec)
		},
	}
}

func writeProperties(w io.Writer, rec domain.AnalyzedString) error {
	p := rec.Properties
	fmt.Fprintf(w, "id:                %s\n", rec.ID)
	fmt.Fprintf(w, "length:            %d\n", p.Length)
	fmt.Fprintf(w, "is_palindrome:     %t\n", p.IsPalindrome)
	fmt.Fprintf(w, "unique_characters: %d\n", p.UniqueCharacters)
	fmt.Fprintf(w, "word_count:        %d\n", p.WordCount)

	chars := make([]string, 0, len(p.CharacterFrequencyMap))
	for c := range p.CharacterFrequencyMap {
		chars = append(chars, c)
	}
	sort.Strings(chars)
	fmt.Fprintln(w, "frequencies:")
	for _, c := range chars {
		if _, err := fmt.Fprintf(w, "  %q %d\n", c, p.CharacterFrequencyMap[c]); err != nil {
			return err
		}
	}
	return nil
}
