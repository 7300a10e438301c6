package cli

import (
	"fmt"
	"io"
	"iter"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

const dateLayout = "Mon Jan 2 15:04:05 2006 -0700"

func newLogCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the current branch's history, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, w io.Writer) error {
				return printCommits(w, r.Log())
			})
		},
	}
}

func newGlobalLogCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, w io.Writer) error {
				return printCommits(w, r.GlobalLog())
			})
		},
	}
}

func newFindCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "find <message>",
		Short: "Print the IDs of commits with the given message",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withRepo(cmd, func(r *repo.Repository, w io.Writer) error {
				ids, err := r.Find(args[0])
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(w, dag.CIDToFilename(id))
				}
				return nil
			})
		},
	}
}

func printCommits(w io.Writer, commits iter.Seq2[*dag.Commit, error]) error {
	for c, err := range commits {
		if err != nil {
			return err
		}
		printCommit(w, c)
	}
	return nil
}

func printCommit(w io.Writer, c *dag.Commit) {
	fmt.Fprintln(w, "===")
	fmt.Fprintf(w, "commit %s\n", dag.CIDToFilename(c.ID))
	if c.Parents.IsMerge() {
		ids := c.Parents.IDs()
		fmt.Fprintf(w, "Merge: %s %s\n", dag.ShortID(ids[0]), dag.ShortID(ids[1]))
	}
	fmt.Fprintf(w, "Date: %s\n", c.Timestamp.Local().Format(dateLayout))
	fmt.Fprintln(w, c.Message)
	fmt.Fprintln(w)
}
