package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/string-analyzer/internal/application"
	appanalysis "github.com/bryanwahyu/string-analyzer/internal/application/analysis"
	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/string-analyzer/internal/infra/db/memory"
)

// maxLineSize bounds a single input line; bufio's default is 64 KiB.
const maxLineSize = 16 << 20

type filterOptions struct {
	input string
}

// NewFilterCommand creates the filter command. Each input line is stored in an
// in-memory repository, then the query runs over them exactly as the server
// would run it.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter <query>",
		Short: "Run a natural-language query over lines read from a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if opts.input != "" && opts.input != "-" {
				f, err := os.Open(opts.input)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runFilter(cmd.Context(), rootOpts, in, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "file with one string per line (- for stdin)")
	return cmd
}

func runFilter(ctx context.Context, rootOpts *RootOptions, in io.Reader, out, errOut io.Writer, query string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc := &appanalysis.Service{
		Repo:  memory.NewStringRepository(),
		Clock: application.SystemClock{},
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		if sc.Text() == "" {
			continue
		}
		if _, err := svc.Create(ctx, sc.Text()); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				fmt.Fprintf(errOut, "line %d: duplicate, skipped\n", line)
				continue
			}
			return errors.Wrapf(err, "line %d", line)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	res, err := svc.FilterByNaturalLanguage(ctx, query)
	if err != nil {
		return err
	}
	if rootOpts.Format == "json" {
		return writeJSON(out, res)
	}
	if res.Count == 0 {
		_, err := fmt.Fprintln(out, res.Message)
		return err
	}
	for _, rec := range res.Data {
		if _, err := fmt.Fprintln(out, rec.Value); err != nil {
			return err
		}
	}
	return nil
}
