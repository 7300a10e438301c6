package dag

import (
	"fmt"
	"iter"
	"strings"

	gocid "github.com/ipfs/go-cid"
	platformerrors "github.com/jmgilman/go/errors"
)

var (
	// ErrNotCommit is returned when an ID names a blob rather than a commit.
	ErrNotCommit = platformerrors.New(platformerrors.CodeNotFound, "object is not a commit")

	// ErrUnknownCommit is returned when no stored commit matches an ID or prefix.
	ErrUnknownCommit = platformerrors.New(platformerrors.CodeNotFound, "no commit with that id exists")

	// ErrAmbiguousCommit is returned when a prefix matches more than one commit.
	ErrAmbiguousCommit = platformerrors.New(platformerrors.CodeNotFound, "commit id prefix is ambiguous")

	// ErrNoCommonAncestor is returned by SplitPoint when two lineages never meet.
	ErrNoCommonAncestor = platformerrors.New(platformerrors.CodeNotFound, "no common ancestor")
)

// CommitGraph reads and writes commits in an ObjectStore and answers
// ancestry questions over their first-parent links.
type CommitGraph struct {
	store *ObjectStore
}

// NewCommitGraph creates a CommitGraph over store.
func NewCommitGraph(store *ObjectStore) *CommitGraph {
	return &CommitGraph{store: store}
}

// Write stores c and sets c.ID. Writing an identical commit twice is a no-op.
func (g *CommitGraph) Write(c *Commit) (gocid.Cid, error) {
	data, err := EncodeCommit(c)
	if err != nil {
		return gocid.Undef, fmt.Errorf("serialize commit: %w", err)
	}
	id, err := g.store.PutCommit(data)
	if err != nil {
		return gocid.Undef, fmt.Errorf("store commit: %w", err)
	}
	c.ID = id
	return id, nil
}

// Get reads and decodes a commit by CID.
func (g *CommitGraph) Get(id gocid.Cid) (*Commit, error) {
	if id.Type() != gocid.DagJSON {
		return nil, fmt.Errorf("%w: %s", ErrNotCommit, id)
	}
	data, err := g.store.Get(id)
	if err != nil {
		return nil, err
	}
	return DecodeCommit(id, data)
}

// AncestorChain walks from id along first parents only and returns every
// visited ID, id first and the root commit last.
func (g *CommitGraph) AncestorChain(id gocid.Cid) ([]gocid.Cid, error) {
	var chain []gocid.Cid
	current := id
	for {
		c, err := g.Get(current)
		if err != nil {
			return nil, fmt.Errorf("walk ancestors of %s: %w", id, err)
		}
		chain = append(chain, current)
		parent, ok := c.Parents.First()
		if !ok {
			return chain, nil
		}
		current = parent
	}
}

// SplitPoint returns the first commit in a's first-parent chain that also
// appears anywhere in b's first-parent chain.
//
// Only first parents are followed, so after several criss-crossing merges
// the result may be more recent than the true lowest common ancestor.
func (g *CommitGraph) SplitPoint(a, b gocid.Cid) (gocid.Cid, error) {
	chainA, err := g.AncestorChain(a)
	if err != nil {
		return gocid.Undef, err
	}
	chainB, err := g.AncestorChain(b)
	if err != nil {
		return gocid.Undef, err
	}
	inB := make(map[gocid.Cid]struct{}, len(chainB))
	for _, id := range chainB {
		inB[id] = struct{}{}
	}
	for _, id := range chainA {
		if _, ok := inB[id]; ok {
			return id, nil
		}
	}
	return gocid.Undef, ErrNoCommonAncestor
}

// Log yields commits from head to the root following first parents. The
// sequence is lazy and can be ranged over any number of times.
func (g *CommitGraph) Log(head gocid.Cid) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		current := head
		for {
			c, err := g.Get(current)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			parent, ok := c.Parents.First()
			if !ok {
				return
			}
			current = parent
		}
	}
}

// All yields every stored commit in object-store order.
func (g *CommitGraph) All() iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		ids, err := g.commitIDs()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, id := range ids {
			c, err := g.Get(id)
			if !yield(c, err) || err != nil {
				return
			}
		}
	}
}

// Resolve expands a full or abbreviated commit ID. A prefix may match
// either the multibase ID string or the hex digest.
func (g *CommitGraph) Resolve(prefix string) (gocid.Cid, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return gocid.Undef, ErrUnknownCommit
	}
	ids, err := g.commitIDs()
	if err != nil {
		return gocid.Undef, err
	}
	var match gocid.Cid
	found := 0
	for _, id := range ids {
		if strings.HasPrefix(CIDToFilename(id), prefix) || strings.HasPrefix(DigestHex(id), prefix) {
			match = id
			found++
		}
	}
	switch found {
	case 0:
		return gocid.Undef, fmt.Errorf("%w: %s", ErrUnknownCommit, prefix)
	case 1:
		return match, nil
	default:
		return gocid.Undef, fmt.Errorf("%w: %s matches %d commits", ErrAmbiguousCommit, prefix, found)
	}
}

func (g *CommitGraph) commitIDs() ([]gocid.Cid, error) {
	all, err := g.store.List()
	if err != nil {
		return nil, err
	}
	ids := all[:0]
	for _, id := range all {
		if id.Type() == gocid.DagJSON {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
