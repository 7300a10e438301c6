package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newDiffCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [<file>...]",
		Short: "Show unstaged changes as line diffs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, w io.Writer) error {
				diffs, err := r.Diff(args...)
				if err != nil {
					return err
				}
				for _, d := range diffs {
					fmt.Fprint(w, d.Unified())
				}
				return nil
			})
		},
	}
}
