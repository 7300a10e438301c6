package fuse

import (
	"context"
	"path"
	"sort"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

// treeEntry is one immediate child of a directory inside a commit tree.
type treeEntry struct {
	name  string
	isDir bool
}

// treeEntries lists the immediate children of dir ("" for the top level).
// Commit trees only record files, so directories are implied by paths.
func treeEntries(tree dag.Tree, dir string) []treeEntry {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	seen := make(map[string]bool)
	for p := range tree {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seen[rest[:i]] = true
		} else if _, ok := seen[rest]; !ok {
			seen[rest] = false
		}
	}
	entries := make([]treeEntry, 0, len(seen))
	for name, isDir := range seen {
		entries = append(entries, treeEntry{name: name, isDir: isDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries
}

// TreeDir exposes one directory of a commit's tree. Files read their blobs
// from the object store.
type TreeDir struct {
	fs.Inode
	repo *repo.Repository
	tree dag.Tree
	dir  string // directory inside the tree, "" for the top level
	path string // mount-relative path, for inode numbers
}

var _ = (fs.NodeLookuper)((*TreeDir)(nil))
var _ = (fs.NodeReaddirer)((*TreeDir)(nil))
var _ = (fs.NodeGetattrer)((*TreeDir)(nil))

func (d *TreeDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno(d.path)
	return fs.OK
}

func (d *TreeDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children := treeEntries(d.tree, d.dir)
	entries := make([]fuse.DirEntry, len(children))
	for i, c := range children {
		mode := uint32(syscall.S_IFREG)
		if c.isDir {
			mode = syscall.S_IFDIR
		}
		entries[i] = fuse.DirEntry{
			Name: c.name,
			Mode: mode,
			Ino:  stableIno(path.Join(d.path, c.name)),
		}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *TreeDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	full := path.Join(d.dir, name)
	childPath := path.Join(d.path, name)

	if blob, ok := d.tree[full]; ok {
		return newFileInode(ctx, &d.Inode, childPath, func() ([]byte, error) {
			return d.repo.ReadBlob(blob)
		}), fs.OK
	}
	for _, e := range treeEntries(d.tree, d.dir) {
		if e.name == name && e.isDir {
			sub := &TreeDir{repo: d.repo, tree: d.tree, dir: full, path: childPath}
			return d.NewInode(ctx, sub, fs.StableAttr{
				Mode: syscall.S_IFDIR,
				Ino:  stableIno(childPath),
			}), fs.OK
		}
	}
	return nil, syscall.ENOENT
}
