package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/systemshift/gitlet/internal/dag"
)

// worktree is the user's working directory minus the control directory.
// Paths are slash-separated and relative to the root.
type worktree struct {
	fs      billy.Filesystem
	control string
}

// cleanPath normalizes a user-supplied path. It rejects paths that escape the
// working directory or point into the control directory.
func (w *worktree) cleanPath(p string) (string, bool) {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "/")
	if p == "." || p == "" || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	if p == w.control || strings.HasPrefix(p, w.control+"/") {
		return "", false
	}
	return p, true
}

// Files lists every regular file, sorted.
func (w *worktree) Files() ([]string, error) {
	var files []string
	if err := w.walk("", &files); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (w *worktree) walk(dir string, out *[]string) error {
	entries, err := w.fs.ReadDir(dirOrRoot(dir))
	if err != nil {
		return fmt.Errorf("list %s: %w", dirOrRoot(dir), err)
	}
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if dir == "" && e.Name() == w.control {
			continue
		}
		switch {
		case e.IsDir():
			if err := w.walk(p, out); err != nil {
				return err
			}
		case e.Mode().IsRegular():
			*out = append(*out, p)
		}
	}
	return nil
}

// Exists reports whether p is a regular file.
func (w *worktree) Exists(p string) bool {
	info, err := w.fs.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the content of p, or ErrFileNotFound.
func (w *worktree) Read(p string) ([]byte, error) {
	if !w.Exists(p) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	data, err := util.ReadFile(w.fs, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Write replaces p with data, creating parent directories.
func (w *worktree) Write(p string, data []byte) error {
	if err := dag.SafeWrite(w.fs, p, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// Remove deletes p if present and prunes parent directories left empty.
func (w *worktree) Remove(p string) error {
	if err := w.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		entries, err := w.fs.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := w.fs.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

func dirOrRoot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
