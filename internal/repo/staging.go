package repo

import (
	"sort"

	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/gitlet/internal/dag"
)

// StagingIndex holds pending additions and removals for the next commit.
// A path is never in both sets: the most recent operation wins.
type StagingIndex struct {
	added   map[string]gocid.Cid
	removed map[string]struct{}
}

// NewStagingIndex returns an empty index.
func NewStagingIndex() *StagingIndex {
	return &StagingIndex{
		added:   make(map[string]gocid.Cid),
		removed: make(map[string]struct{}),
	}
}

// Stage records path -> blob for the next commit and clears any removal mark.
func (s *StagingIndex) Stage(path string, blob gocid.Cid) {
	delete(s.removed, path)
	s.added[path] = blob
}

// Unstage drops a pending addition. It reports whether one existed.
func (s *StagingIndex) Unstage(path string) bool {
	_, ok := s.added[path]
	delete(s.added, path)
	return ok
}

// MarkRemoved records that path leaves the next commit's tree and clears any
// pending addition for it.
func (s *StagingIndex) MarkRemoved(path string) {
	delete(s.added, path)
	s.removed[path] = struct{}{}
}

// Unremove clears a removal mark. It reports whether one existed.
func (s *StagingIndex) Unremove(path string) bool {
	_, ok := s.removed[path]
	delete(s.removed, path)
	return ok
}

// Staged returns the pending blob for path.
func (s *StagingIndex) Staged(path string) (gocid.Cid, bool) {
	c, ok := s.added[path]
	return c, ok
}

// IsRemoved reports whether path is marked for removal.
func (s *StagingIndex) IsRemoved(path string) bool {
	_, ok := s.removed[path]
	return ok
}

// IsEmpty reports whether nothing is staged or marked for removal.
func (s *StagingIndex) IsEmpty() bool {
	return len(s.added) == 0 && len(s.removed) == 0
}

// Clear empties the index.
func (s *StagingIndex) Clear() {
	s.added = make(map[string]gocid.Cid)
	s.removed = make(map[string]struct{})
}

// Added returns staged paths sorted.
func (s *StagingIndex) Added() []string {
	return sortedKeys(s.added)
}

// Removed returns paths marked for removal sorted.
func (s *StagingIndex) Removed() []string {
	return sortedKeys(s.removed)
}

// Apply returns a copy of base with staged additions applied and staged
// removals dropped.
func (s *StagingIndex) Apply(base dag.Tree) dag.Tree {
	tree := base.Clone()
	for path, blob := range s.added {
		tree[path] = blob
	}
	for path := range s.removed {
		delete(tree, path)
	}
	return tree
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
