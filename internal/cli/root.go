package cli

import (
	"io"
	"log"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

// settings holds the persistent flags shared by every subcommand.
type settings struct {
	dir     string
	verbose bool
}

// NewRootCmd builds the gitlet command tree.
func NewRootCmd() *cobra.Command {
	s := &settings{}

	cmd := &cobra.Command{
		Use:           "gitlet",
		Short:         "A tiny local version-control system",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return ErrNoCommand
			}
			return ErrUnknownCommand
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().StringVarP(&s.dir, "dir", "C", ".", "Working directory of the repository")
	cmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Log repository operations to stderr")

	cmd.AddCommand(
		newInitCmd(s),
		newAddCmd(s),
		newCommitCmd(s),
		newRmCmd(s),
		newLogCmd(s),
		newGlobalLogCmd(s),
		newFindCmd(s),
		newStatusCmd(s),
		newCheckoutCmd(s),
		newBranchCmd(s),
		newRmBranchCmd(s),
		newResetCmd(s),
		newMergeCmd(s),
		newDiffCmd(s),
		newMountCmd(s),
	)
	return cmd
}

func (s *settings) filesystem() billy.Filesystem {
	return osfs.New(s.dir)
}

func (s *settings) options(cmd *cobra.Command) []repo.Option {
	if !s.verbose {
		return nil
	}
	return []repo.Option{repo.WithLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))}
}

// withRepo opens the repository, runs fn and saves state if fn succeeds.
func (s *settings) withRepo(cmd *cobra.Command, fn func(r *repo.Repository, w io.Writer) error) error {
	r, err := repo.Open(s.filesystem(), s.options(cmd)...)
	if err != nil {
		return err
	}
	if err := fn(r, cmd.OutOrStdout()); err != nil {
		return err
	}
	return r.Save()
}

// exactArgs is cobra.ExactArgs with the gitlet operand error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return ErrIncorrectOperands
		}
		return nil
	}
}

// Run executes gitlet with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return report(cmd.Execute(), stdout, stderr)
}
