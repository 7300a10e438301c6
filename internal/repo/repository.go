package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/gitlet/internal/dag"
)

// ControlDir is the metadata directory at the root of the working directory.
const ControlDir = ".gitlet"

const formatVersion = 1

var (
	objectsDir = path.Join(ControlDir, "objects")
	statePath  = path.Join(ControlDir, "state.json")
	metaPath   = path.Join(ControlDir, "meta.json")
)

// Repository ties the object store, commit graph and mutable state to a
// working directory. Operations validate every precondition before touching
// the working directory; state reaches disk only through Save.
type Repository struct {
	fs    billy.Filesystem
	wt    *worktree
	store *dag.ObjectStore
	graph *dag.CommitGraph
	state *State
	log   *log.Logger
	now   func() time.Time
}

// Init creates a repository rooted at fs with a root commit on master. If
// any step fails the control directory is removed again.
func Init(fs billy.Filesystem, opts ...Option) (_ *Repository, err error) {
	if _, err := fs.Stat(ControlDir); err == nil {
		return nil, ErrAlreadyInitialized
	}
	defer func() {
		if err != nil {
			util.RemoveAll(fs, ControlDir)
		}
	}()

	r, err := newRepository(fs, opts)
	if err != nil {
		return nil, err
	}

	root := dag.NewRootCommit()
	if _, err := r.graph.Write(root); err != nil {
		return nil, fmt.Errorf("write root commit: %w", err)
	}
	r.state = newState(root.ID)

	meta := map[string]any{
		"version": formatVersion,
		"created": r.now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	if err := dag.SafeWrite(fs, metaPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write meta: %w", err)
	}
	if err := r.Save(); err != nil {
		return nil, err
	}
	r.log.Printf("gitlet: initialized repository, root commit %s", dag.CIDToFilename(root.ID))
	return r, nil
}

// Open loads an existing repository rooted at fs.
func Open(fs billy.Filesystem, opts ...Option) (*Repository, error) {
	if _, err := fs.Stat(ControlDir); err != nil {
		return nil, ErrNotInitialized
	}
	r, err := newRepository(fs, opts)
	if err != nil {
		return nil, err
	}
	st, err := loadState(fs, statePath)
	if err != nil {
		return nil, err
	}
	r.state = st
	return r, nil
}

func newRepository(fs billy.Filesystem, opts []Option) (*Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	store, err := dag.NewObjectStore(fs, objectsDir)
	if err != nil {
		return nil, err
	}
	return &Repository{
		fs:    fs,
		wt:    &worktree{fs: fs, control: ControlDir},
		store: store,
		graph: dag.NewCommitGraph(store),
		log:   o.logger,
		now:   o.now,
	}, nil
}

// Save persists HEAD, branches and the staging index.
func (r *Repository) Save() error {
	if err := r.state.save(r.fs, statePath); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repository) CurrentBranch() string { return r.state.Head }

// Branches returns all branch names sorted.
func (r *Repository) Branches() []string { return r.state.Branches.List() }

// BranchTip returns the commit at the tip of a branch.
func (r *Repository) BranchTip(name string) (gocid.Cid, error) {
	tip, ok := r.state.Branches.Get(name)
	if !ok {
		return gocid.Undef, fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	return tip, nil
}

// CommitByID reads a commit.
func (r *Repository) CommitByID(id gocid.Cid) (*dag.Commit, error) {
	return r.graph.Get(id)
}

// HeadCommit returns the commit at the tip of the current branch.
func (r *Repository) HeadCommit() (*dag.Commit, error) {
	return r.graph.Get(r.state.HeadCommit())
}

// ReadBlob returns stored file content.
func (r *Repository) ReadBlob(id gocid.Cid) ([]byte, error) {
	return r.store.Get(id)
}

// Add stages the working-directory version of p. Staging content identical
// to the head commit's version only drops any stale staged entry.
func (r *Repository) Add(p string) error {
	clean, ok := r.wt.cleanPath(p)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	data, err := r.wt.Read(clean)
	if err != nil {
		return err
	}
	blob, err := dag.ComputeCID(data)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}

	r.state.Staging.Unremove(clean)
	if tracked, ok := head.Tree[clean]; ok && tracked.Equals(blob) {
		r.state.Staging.Unstage(clean)
		return nil
	}
	if _, err := r.store.Put(data); err != nil {
		return err
	}
	r.state.Staging.Stage(clean, blob)
	r.log.Printf("gitlet: staged %s as %s", clean, dag.ShortID(blob))
	return nil
}

// Commit records the staged changes on the current branch.
func (r *Repository) Commit(message string) (*dag.Commit, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	return r.commit(message, dag.Single(head.ID), head, false)
}

// commit builds a new commit whose tree is the first parent's tree with the
// staging index applied, then advances the current branch.
func (r *Repository) commit(message string, parents dag.Parents, head *dag.Commit, allowEmpty bool) (*dag.Commit, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if !allowEmpty && r.state.Staging.IsEmpty() {
		return nil, ErrNothingToCommit
	}

	c := &dag.Commit{
		Message:   message,
		Timestamp: r.now().UTC(),
		Parents:   parents,
		Tree:      r.state.Staging.Apply(head.Tree),
	}
	if _, err := r.graph.Write(c); err != nil {
		return nil, err
	}
	r.state.Branches.Set(r.state.Head, c.ID)
	r.state.Staging.Clear()
	r.log.Printf("gitlet: %s advanced to %s", r.state.Head, dag.CIDToFilename(c.ID))
	return c, nil
}

// Rm unstages p, and if the head commit tracks it, marks it for removal and
// deletes it from the working directory.
func (r *Repository) Rm(p string) error {
	clean, ok := r.wt.cleanPath(p)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNothingToRemove, p)
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	_, staged := r.state.Staging.Staged(clean)
	_, tracked := head.Tree[clean]
	if !staged && !tracked {
		return fmt.Errorf("%w: %s", ErrNothingToRemove, clean)
	}

	if staged {
		r.state.Staging.Unstage(clean)
	}
	if tracked {
		r.state.Staging.MarkRemoved(clean)
		if err := r.wt.Remove(clean); err != nil {
			return err
		}
	}
	return nil
}

// CheckoutFile restores p from the head commit.
func (r *Repository) CheckoutFile(p string) error {
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	return r.restoreFile(head, p)
}

// CheckoutFileAt restores p from the commit named by a full or abbreviated ID.
func (r *Repository) CheckoutFileAt(commitID, p string) error {
	c, err := r.ResolveCommit(commitID)
	if err != nil {
		return err
	}
	return r.restoreFile(c, p)
}

func (r *Repository) restoreFile(c *dag.Commit, p string) error {
	clean, ok := r.wt.cleanPath(p)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotInCommit, p)
	}
	blob, ok := c.Tree[clean]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotInCommit, clean)
	}
	data, err := r.store.Get(blob)
	if err != nil {
		return err
	}
	return r.wt.Write(clean, data)
}

// CheckoutBranch switches HEAD to name and makes the working directory match
// its tip.
func (r *Repository) CheckoutBranch(name string) error {
	tip, ok := r.state.Branches.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	if name == r.state.Head {
		return ErrAlreadyOnBranch
	}
	target, err := r.graph.Get(tip)
	if err != nil {
		return err
	}
	if err := r.materialize(target.Tree); err != nil {
		return err
	}
	r.state.Staging.Clear()
	r.state.Head = name
	r.log.Printf("gitlet: checked out %s at %s", name, dag.CIDToFilename(tip))
	return nil
}

// Branch creates name at the current head commit.
func (r *Repository) Branch(name string) error {
	if r.state.Branches.Has(name) {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	r.state.Branches.Set(name, r.state.HeadCommit())
	return nil
}

// RmBranch deletes the branch pointer name. Commits are kept.
func (r *Repository) RmBranch(name string) error {
	if name == r.state.Head {
		return ErrCannotRemoveCurrentBranch
	}
	if !r.state.Branches.Has(name) {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	r.state.Branches.Delete(name)
	return nil
}

// Reset makes the working directory match commitID and moves the current
// branch tip there.
func (r *Repository) Reset(commitID string) error {
	target, err := r.ResolveCommit(commitID)
	if err != nil {
		return err
	}
	if err := r.materialize(target.Tree); err != nil {
		return err
	}
	r.state.Staging.Clear()
	r.state.Branches.Set(r.state.Head, target.ID)
	r.log.Printf("gitlet: reset %s to %s", r.state.Head, dag.CIDToFilename(target.ID))
	return nil
}

// ResolveCommit looks up a commit by full or abbreviated ID.
func (r *Repository) ResolveCommit(commitID string) (*dag.Commit, error) {
	id, err := r.graph.Resolve(commitID)
	if errors.Is(err, dag.ErrUnknownCommit) || errors.Is(err, dag.ErrAmbiguousCommit) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchCommit, commitID)
	}
	if err != nil {
		return nil, err
	}
	return r.graph.Get(id)
}

// untracked reports whether a working-directory path is neither tracked by
// the head tree nor staged for addition.
func (r *Repository) untracked(head dag.Tree, p string) bool {
	if _, ok := head[p]; ok {
		return false
	}
	_, staged := r.state.Staging.Staged(p)
	return !staged
}

// guardUntracked fails if any untracked working file sits at one of paths.
func (r *Repository) guardUntracked(head dag.Tree, paths func(string) bool) error {
	files, err := r.wt.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if r.untracked(head, f) && paths(f) {
			return fmt.Errorf("%w: %s", ErrUntrackedFileConflict, f)
		}
	}
	return nil
}

// materialize makes the working directory hold exactly target. Every
// working file is either overwritten or deleted, so any untracked file
// blocks it. Every target blob is loaded before the first file is touched.
func (r *Repository) materialize(target dag.Tree) error {
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	if err := r.guardUntracked(head.Tree, func(string) bool { return true }); err != nil {
		return err
	}

	contents := make(map[string][]byte, len(target))
	for p, blob := range target {
		data, err := r.store.Get(blob)
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		contents[p] = data
	}

	files, err := r.wt.Files()
	if err != nil {
		return err
	}
	for _, p := range files {
		if _, keep := target[p]; !keep {
			if err := r.wt.Remove(p); err != nil {
				return err
			}
		}
	}
	for _, p := range target.Paths() {
		if err := r.wt.Write(p, contents[p]); err != nil {
			return err
		}
	}
	return nil
}
