package fuse

import (
	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/repo"
)

// MountFS mounts a read-only view of the repository history at mountpoint.
// Returns the server (call server.Wait() to block, server.Unmount() to stop).
func MountFS(mountpoint string, r *repo.Repository, debug bool) (*gofuse.Server, error) {
	root := &RootNode{repo: r}

	opts := &fs.Options{
		MountOptions: gofuse.MountOptions{
			FsName:        "gitlet",
			Name:          "gitlet",
			DisableXAttrs: true,
			Debug:         debug,
			Options:       []string{"ro"},
		},
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	return server, nil
}
