package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/gitlet/internal/dag"
)

// DefaultBranch is the branch checked out by init.
const DefaultBranch = "master"

// BranchTable maps branch names to the commit at each tip.
type BranchTable map[string]gocid.Cid

// Set points branch name at c, creating it if needed.
func (b BranchTable) Set(name string, c gocid.Cid) { b[name] = c }

// Get resolves a branch to its tip.
func (b BranchTable) Get(name string) (gocid.Cid, bool) {
	c, ok := b[name]
	return c, ok
}

// Has reports whether the branch exists.
func (b BranchTable) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// Delete removes a branch.
func (b BranchTable) Delete(name string) { delete(b, name) }

// List returns branch names sorted.
func (b BranchTable) List() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State is the mutable repository record: HEAD, branches and the staging
// index. It is loaded once per command and saved once when the command
// succeeds.
type State struct {
	Head     string
	Branches BranchTable
	Staging  *StagingIndex
}

func newState(root gocid.Cid) *State {
	return &State{
		Head:     DefaultBranch,
		Branches: BranchTable{DefaultBranch: root},
		Staging:  NewStagingIndex(),
	}
}

// HeadCommit returns the tip of the checked-out branch.
func (s *State) HeadCommit() gocid.Cid {
	return s.Branches[s.Head]
}

// stateRecord is the on-disk format of State.
type stateRecord struct {
	V        int               `json:"v"`
	Head     string            `json:"head"`
	Branches map[string]string `json:"branches"`
	Added    map[string]string `json:"added"`
	Removed  []string          `json:"removed"`
}

func loadState(fs billy.Filesystem, name string) (*State, error) {
	data, err := util.ReadFile(fs, name)
	if os.IsNotExist(err) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	st := &State{
		Head:     rec.Head,
		Branches: make(BranchTable, len(rec.Branches)),
		Staging:  NewStagingIndex(),
	}
	for name, s := range rec.Branches {
		c, err := dag.ParseCID(s)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", name, err)
		}
		st.Branches.Set(name, c)
	}
	for path, s := range rec.Added {
		c, err := dag.ParseCID(s)
		if err != nil {
			return nil, fmt.Errorf("staged %s: %w", path, err)
		}
		st.Staging.Stage(path, c)
	}
	for _, path := range rec.Removed {
		st.Staging.MarkRemoved(path)
	}
	if !st.Branches.Has(st.Head) {
		return nil, fmt.Errorf("state: HEAD names missing branch %q", st.Head)
	}
	return st, nil
}

func (s *State) save(fs billy.Filesystem, name string) error {
	rec := stateRecord{
		V:        1,
		Head:     s.Head,
		Branches: make(map[string]string, len(s.Branches)),
		Added:    make(map[string]string),
		Removed:  s.Staging.Removed(),
	}
	for branch, c := range s.Branches {
		rec.Branches[branch] = dag.CIDToFilename(c)
	}
	for _, path := range s.Staging.Added() {
		c, _ := s.Staging.Staged(path)
		rec.Added[path] = dag.CIDToFilename(c)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return dag.SafeWrite(fs, name, append(data, '\n'), 0644)
}
