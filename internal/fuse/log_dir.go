package fuse

import (
	"context"
	"strconv"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

const maxLogEntries = 64

// LogDir exposes the current branch's recent history.
// Layout: log/0 (head commit), log/1 (its first parent), ...
type LogDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*LogDir)(nil))
var _ = (fs.NodeReaddirer)((*LogDir)(nil))
var _ = (fs.NodeGetattrer)((*LogDir)(nil))

func (d *LogDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("log")
	return fs.OK
}

// recent returns up to n commits from the head, newest first.
func (d *LogDir) recent(n int) ([]*dag.Commit, error) {
	var commits []*dag.Commit
	for c, err := range d.repo.Log() {
		if err != nil {
			return nil, err
		}
		if len(commits) == n {
			break
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func (d *LogDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	commits, err := d.recent(maxLogEntries)
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, len(commits))
	for i := range commits {
		name := strconv.Itoa(i)
		entries[i] = fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("log/" + name),
		}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *LogDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 || idx >= maxLogEntries {
		return nil, syscall.ENOENT
	}
	commits, err := d.recent(idx + 1)
	if err != nil {
		return nil, syscall.EIO
	}
	if idx >= len(commits) {
		return nil, syscall.ENOENT
	}
	return newCommitInode(ctx, &d.Inode, "log/"+name, d.repo, commits[idx]), fs.OK
}
