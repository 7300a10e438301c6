package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func newStatusCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and working-directory changes",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, w io.Writer) error {
				st, err := r.Status()
				if err != nil {
					return err
				}
				printStatus(w, st)
				return nil
			})
		},
	}
}

func printStatus(w io.Writer, st *repo.Status) {
	fmt.Fprintln(w, "=== Branches ===")
	for _, b := range st.Branches {
		if b.Current {
			fmt.Fprintf(w, "*%s\n", b.Name)
		} else {
			fmt.Fprintln(w, b.Name)
		}
	}
	section(w, "Staged Files", st.Staged)
	section(w, "Removed Files", st.Removed)

	mods := make([]string, 0, len(st.Modified))
	for _, m := range st.Modified {
		mods = append(mods, fmt.Sprintf("%s (%s)", m.Path, m.Kind))
	}
	section(w, "Modifications Not Staged For Commit", mods)
	section(w, "Untracked Files", st.Untracked)
	fmt.Fprintln(w)
}

func section(w io.Writer, title string, lines []string) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
