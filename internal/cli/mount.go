package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gitletfuse "github.com/systemshift/gitlet/internal/fuse"
	"github.com/systemshift/gitlet/internal/repo"
)

func newMountCmd(s *settings) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mount <mountpoint>",
		Short: "Mount a read-only view of branches and commits",
		Long: `Mount the repository history with FUSE. The mount contains:

  HEAD          current branch and its tip commit
  branches/     one directory per branch holding its tip's files
  commits/      every commit by ID: message, commit.json, tree/
  log/          the current branch's history, 0 being the newest

Stop with Ctrl-C.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mountpoint := args[0]
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

			r, err := repo.Open(s.filesystem(), s.options(cmd)...)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(mountpoint, 0755); err != nil {
				return fmt.Errorf("create mountpoint: %w", err)
			}

			logger.Printf("gitlet: mounting at %s", mountpoint)
			server, err := gitletfuse.MountFS(mountpoint, r, debug)
			if err != nil {
				return fmt.Errorf("mount failed: %w", err)
			}

			// Unmount on signal
			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-done
				logger.Println("gitlet: unmounting...")
				server.Unmount()
			}()

			server.Wait()
			logger.Println("gitlet: stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Log FUSE requests")

	return cmd
}
