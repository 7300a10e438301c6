package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newCheckoutCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [<commit>] -- <file> | <branch>",
		Short: "Restore a file, or switch branches",
		Long: `checkout -- <file>            restore file from the head commit
checkout <commit> -- <file>   restore file from a commit (IDs may be abbreviated)
checkout <branch>             switch to branch and replace the working tree`,
		Args: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			switch {
			case dash == -1 && len(args) == 1,
				dash == 0 && len(args) == 1,
				dash == 1 && len(args) == 2:
				return nil
			}
			return ErrIncorrectOperands
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			return s.withRepo(cmd, func(r *repo.Repository, _ io.Writer) error {
				switch dash {
				case 0:
					return r.CheckoutFile(args[0])
				case 1:
					return r.CheckoutFileAt(args[0], args[1])
				default:
					return r.CheckoutBranch(args[0])
				}
			})
		},
	}
}
