package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newBranchCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "branch <name>",
		Short: "Create a branch at the current head commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				return r.Branch(args[0])
			})
		},
	}
}

func newRmBranchCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				return r.RmBranch(args[0])
			})
		},
	}
}

func newResetCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the current branch to a commit and check it out",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				return r.Reset(args[0])
			})
		},
	}
}
