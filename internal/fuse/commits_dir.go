package fuse

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

// CommitsDir lists every commit by ID. Each entry is a CommitDir.
type CommitsDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*CommitsDir)(nil))
var _ = (fs.NodeReaddirer)((*CommitsDir)(nil))
var _ = (fs.NodeGetattrer)((*CommitsDir)(nil))

func (d *CommitsDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("commits")
	return fs.OK
}

func (d *CommitsDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	for c, err := range d.repo.GlobalLog() {
		if err != nil {
			return nil, syscall.EIO
		}
		name := dag.CIDToFilename(c.ID)
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("commits/" + name),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *CommitsDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id, err := dag.ParseCID(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	c, err := d.repo.CommitByID(id)
	if err != nil {
		return nil, syscall.ENOENT
	}
	return newCommitInode(ctx, &d.Inode, "commits/"+name, d.repo, c), fs.OK
}

// CommitDir holds a commit's metadata files and its tree:
// message, commit.json, tree/.
type CommitDir struct {
	fs.Inode
	repo   *repo.Repository
	commit *dag.Commit
	path   string
}

var _ = (fs.NodeLookuper)((*CommitDir)(nil))
var _ = (fs.NodeReaddirer)((*CommitDir)(nil))
var _ = (fs.NodeGetattrer)((*CommitDir)(nil))

func newCommitInode(ctx context.Context, parent *fs.Inode, p string, r *repo.Repository, c *dag.Commit) *fs.Inode {
	return parent.NewInode(ctx, &CommitDir{repo: r, commit: c, path: p}, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno(p),
	})
}

func (d *CommitDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno(d.path)
	return fs.OK
}

func (d *CommitDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries := []fuse.DirEntry{
		{Name: "message", Mode: syscall.S_IFREG, Ino: stableIno(d.path + "/message")},
		{Name: "commit.json", Mode: syscall.S_IFREG, Ino: stableIno(d.path + "/commit.json")},
		{Name: "tree", Mode: syscall.S_IFDIR, Ino: stableIno(d.path + "/tree")},
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *CommitDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := path.Join(d.path, name)
	switch name {
	case "message":
		return newFileInode(ctx, &d.Inode, childPath, func() ([]byte, error) {
			return []byte(d.commit.Message + "\n"), nil
		}), fs.OK

	case "commit.json":
		return newFileInode(ctx, &d.Inode, childPath, func() ([]byte, error) {
			return commitJSON(d.commit)
		}), fs.OK

	case "tree":
		tree := &TreeDir{repo: d.repo, tree: d.commit.Tree, path: childPath}
		return d.NewInode(ctx, tree, fs.StableAttr{
			Mode: syscall.S_IFDIR,
			Ino:  stableIno(childPath),
		}), fs.OK

	default:
		return nil, syscall.ENOENT
	}
}

// commitView is the JSON shape served as commit.json.
type commitView struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
	Parents   []string          `json:"parents"`
	Tree      map[string]string `json:"tree"`
}

func commitJSON(c *dag.Commit) ([]byte, error) {
	v := commitView{
		ID:        dag.CIDToFilename(c.ID),
		Message:   c.Message,
		Timestamp: c.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Parents:   []string{},
		Tree:      make(map[string]string, len(c.Tree)),
	}
	for _, p := range c.Parents.IDs() {
		v.Parents = append(v.Parents, dag.CIDToFilename(p))
	}
	for p, blob := range c.Tree {
		v.Tree[p] = dag.CIDToFilename(blob)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// branchHead formats the HEAD file: branch name and tip ID.
func branchHead(r *repo.Repository) []byte {
	name := r.CurrentBranch()
	tip, err := r.BranchTip(name)
	if err != nil {
		return []byte(name + "\n")
	}
	return []byte(strings.Join([]string{name, dag.CIDToFilename(tip)}, " ") + "\n")
}
