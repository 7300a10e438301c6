package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newMergeCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, w io.Writer) error {
				res, err := r.Merge(args[0])
				if err != nil {
					return err
				}
				switch {
				case res.Outcome == repo.MergeUpToDate:
					fmt.Fprintln(w, "Given branch is an ancestor of the current branch.")
				case res.Outcome == repo.MergeFastForward:
					fmt.Fprintln(w, "Current branch fast-forwarded.")
				case res.HasConflicts():
					fmt.Fprintln(w, "Encountered a merge conflict.")
				}
				return nil
			})
		},
	}
}
