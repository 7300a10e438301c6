package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newAddCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Stage a file for the next commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				return r.Add(args[0])
			})
		},
	}
}

func newRmCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>",
		Short: "Unstage a file, or mark a tracked file for removal",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				return r.Rm(args[0])
			})
		},
	}
}

func newCommitCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <message>",
		Short: "Record staged changes on the current branch",
		Args: func(_ *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return repo.ErrEmptyMessage
			case 1:
				return nil
			default:
				return ErrIncorrectOperands
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				_, err := r.Commit(args[0])
				return err
			})
		},
	}
}
