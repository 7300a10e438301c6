package dag

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	gocid "github.com/ipfs/go-cid"
)

// InitialMessage is the message of the root commit created by init.
const InitialMessage = "initial commit"

// RootTimestamp is the fixed epoch stamped on every root commit so its ID is
// identical across repositories and runs.
var RootTimestamp = time.Unix(0, 0).UTC()

// ParentKind distinguishes root, ordinary and merge commits.
type ParentKind int

const (
	RootParent ParentKind = iota
	SingleParent
	MergeParents
)

// Parents is the parent list of a commit: none, one, or exactly two.
type Parents struct {
	kind   ParentKind
	first  gocid.Cid
	second gocid.Cid
}

// NoParents returns the parent list of a root commit.
func NoParents() Parents { return Parents{kind: RootParent} }

// Single returns the parent list of an ordinary commit.
func Single(parent gocid.Cid) Parents {
	return Parents{kind: SingleParent, first: parent}
}

// Merge returns the parent list of a merge commit. Order matters: the
// current branch comes first and is the one followed by log and split-point
// discovery.
func Merge(current, given gocid.Cid) Parents {
	return Parents{kind: MergeParents, first: current, second: given}
}

func (p Parents) Kind() ParentKind { return p.kind }

func (p Parents) IsMerge() bool { return p.kind == MergeParents }

// First returns the first parent, or false for a root commit.
func (p Parents) First() (gocid.Cid, bool) {
	if p.kind == RootParent {
		return gocid.Undef, false
	}
	return p.first, true
}

// IDs returns the parents in order.
func (p Parents) IDs() []gocid.Cid {
	switch p.kind {
	case SingleParent:
		return []gocid.Cid{p.first}
	case MergeParents:
		return []gocid.Cid{p.first, p.second}
	}
	return nil
}

// Tree maps working-directory-relative, slash-separated paths to blob IDs.
type Tree map[string]gocid.Cid

// Clone returns an independent copy of t.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Paths returns the tracked paths in lexical order.
func (t Tree) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Commit is an immutable snapshot node. ID is derived from the other fields
// and is not part of the encoding.
type Commit struct {
	ID        gocid.Cid
	Message   string
	Timestamp time.Time
	Parents   Parents
	Tree      Tree
}

// NewRootCommit builds the parentless, empty commit created by init.
func NewRootCommit() *Commit {
	return &Commit{
		Message:   InitialMessage,
		Timestamp: RootTimestamp,
		Parents:   NoParents(),
		Tree:      Tree{},
	}
}

// commitRecord is the on-disk format of a commit.
type commitRecord struct {
	V         int               `json:"v"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Parents   []string          `json:"parents"`
	Tree      map[string]string `json:"tree"`
}

// EncodeCommit serializes c via CanonicalJSON.
func EncodeCommit(c *Commit) ([]byte, error) {
	rec := commitRecord{
		V:         1,
		Message:   c.Message,
		Timestamp: c.Timestamp.UTC(),
		Parents:   []string{},
		Tree:      make(map[string]string, len(c.Tree)),
	}
	for _, p := range c.Parents.IDs() {
		rec.Parents = append(rec.Parents, CIDToFilename(p))
	}
	for path, blob := range c.Tree {
		rec.Tree[path] = CIDToFilename(blob)
	}
	return CanonicalJSON(rec)
}

// DecodeCommit parses bytes produced by EncodeCommit.
func DecodeCommit(id gocid.Cid, data []byte) (*Commit, error) {
	var rec commitRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal commit: %w", err)
	}
	parents := make([]gocid.Cid, 0, len(rec.Parents))
	for _, s := range rec.Parents {
		c, err := ParseCID(s)
		if err != nil {
			return nil, fmt.Errorf("commit %s parent: %w", id, err)
		}
		parents = append(parents, c)
	}
	c := &Commit{
		ID:        id,
		Message:   rec.Message,
		Timestamp: rec.Timestamp,
		Tree:      make(Tree, len(rec.Tree)),
	}
	switch len(parents) {
	case 0:
		c.Parents = NoParents()
	case 1:
		c.Parents = Single(parents[0])
	case 2:
		c.Parents = Merge(parents[0], parents[1])
	default:
		return nil, fmt.Errorf("%w: commit %s has %d parents", ErrCorruptObject, id, len(parents))
	}
	for path, s := range rec.Tree {
		blob, err := ParseCID(s)
		if err != nil {
			return nil, fmt.Errorf("commit %s tree entry %s: %w", id, path, err)
		}
		c.Tree[path] = blob
	}
	return c, nil
}
