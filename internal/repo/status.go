package repo

import (
	"github.com/systemshift/gitlet/internal/dag"
)

// ChangeKind describes how a working file differs from what would be committed.
type ChangeKind string

const (
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
)

// FileChange is an unstaged modification of a tracked or staged file.
type FileChange struct {
	Path string
	Kind ChangeKind
}

// BranchStatus is one row of the branch listing.
type BranchStatus struct {
	Name    string
	Current bool
}

// Status summarizes branches, the staging index and the working directory.
// Every list is sorted.
type Status struct {
	Branches  []BranchStatus
	Staged    []string
	Removed   []string
	Modified  []FileChange
	Untracked []string
}

// Status reports the repository status.
func (r *Repository) Status() (*Status, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	st := &Status{
		Staged:  r.state.Staging.Added(),
		Removed: r.state.Staging.Removed(),
	}
	for _, name := range r.state.Branches.List() {
		st.Branches = append(st.Branches, BranchStatus{Name: name, Current: name == r.state.Head})
	}

	files, err := r.wt.Files()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	// Candidate paths: everything tracked by head or staged for addition.
	expected := make(dag.Tree, len(head.Tree))
	for p, blob := range head.Tree {
		if !r.state.Staging.IsRemoved(p) {
			expected[p] = blob
		}
	}
	for _, p := range r.state.Staging.Added() {
		blob, _ := r.state.Staging.Staged(p)
		expected[p] = blob
	}
	for _, p := range expected.Paths() {
		if !present[p] {
			st.Modified = append(st.Modified, FileChange{Path: p, Kind: Deleted})
			continue
		}
		data, err := r.wt.Read(p)
		if err != nil {
			return nil, err
		}
		blob, err := dag.ComputeCID(data)
		if err != nil {
			return nil, err
		}
		if !blob.Equals(expected[p]) {
			st.Modified = append(st.Modified, FileChange{Path: p, Kind: Modified})
		}
	}

	for _, f := range files {
		if _, ok := expected[f]; !ok {
			st.Untracked = append(st.Untracked, f)
		}
	}
	return st, nil
}
