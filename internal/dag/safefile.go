package dag

import (
	"crypto/rand"
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
)

type syncer interface {
	Sync() error
}

// SafeWrite writes data to name atomically: tempfile -> fsync -> rename.
// The tempfile is created in the same directory as name so the rename stays
// on one filesystem. Filesystems without fsync (memfs) skip that step.
func SafeWrite(fs billy.Filesystem, name string, data []byte, perm os.FileMode) (err error) {
	dir := path.Dir(name)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	tmp := path.Join(dir, ".tmp-"+randomSuffix())
	f, err := fs.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// Clean up on any error
	defer func() {
		if err != nil {
			fs.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if s, ok := f.(syncer); ok {
		if err = s.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("fsync temp file: %w", err)
		}
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = fs.Rename(tmp, name); err != nil {
		return fmt.Errorf("rename temp to target: %w", err)
	}
	return nil
}

// randomSuffix never fails: rand.Text aborts the process if the system
// random source is unavailable.
func randomSuffix() string {
	return rand.Text()
}
