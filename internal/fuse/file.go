package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// BytesFile is a read-only file whose content is produced on demand.
type BytesFile struct {
	fs.Inode
	path    string
	content func() ([]byte, error)
}

var _ = (fs.NodeGetattrer)((*BytesFile)(nil))
var _ = (fs.NodeReader)((*BytesFile)(nil))
var _ = (fs.NodeOpener)((*BytesFile)(nil))

func (f *BytesFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := f.content()
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(data))
	out.Ino = stableIno(f.path)
	return fs.OK
}

func (f *BytesFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (f *BytesFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.content()
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(sliceAt(data, off, len(dest))), fs.OK
}

func newFileInode(ctx context.Context, parent *fs.Inode, path string, content func() ([]byte, error)) *fs.Inode {
	return parent.NewInode(ctx, &BytesFile{path: path, content: content}, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno(path),
	})
}
