package cli

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newInitCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty repository with an initial commit",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := repo.Init(s.filesystem(), s.options(cmd)...)
			return err
		},
	}
}
