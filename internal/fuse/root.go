package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/repo"
)

// RootNode is the mountpoint directory. Contains "HEAD", "branches/",
// "commits/" and "log/".
type RootNode struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	head := r.NewPersistentInode(ctx, &BytesFile{
		path:    "HEAD",
		content: func() ([]byte, error) { return branchHead(r.repo), nil },
	}, fs.StableAttr{Mode: syscall.S_IFREG, Ino: stableIno("HEAD")})
	r.AddChild("HEAD", head, true)

	branchesInode := r.NewPersistentInode(ctx, &BranchesDir{repo: r.repo}, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("branches"),
	})
	r.AddChild("branches", branchesInode, true)

	commitsInode := r.NewPersistentInode(ctx, &CommitsDir{repo: r.repo}, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("commits"),
	})
	r.AddChild("commits", commitsInode, true)

	logInode := r.NewPersistentInode(ctx, &LogDir{repo: r.repo}, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("log"),
	})
	r.AddChild("log", logInode, true)
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("/")
	return fs.OK
}

// BranchesDir lists branches. Each entry is the tip commit's tree.
type BranchesDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("branches")
	return fs.OK
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names := d.repo.Branches()
	entries := make([]fuse.DirEntry, len(names))
	for i, name := range names {
		entries[i] = fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("branches/" + name),
		}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	tip, err := d.repo.BranchTip(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	c, err := d.repo.CommitByID(tip)
	if err != nil {
		return nil, syscall.EIO
	}
	p := "branches/" + name
	tree := &TreeDir{repo: d.repo, tree: c.Tree, path: p}
	return d.NewInode(ctx, tree, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno(p),
	}), fs.OK
}
