package dag

import (
	"testing"
	"time"

	gocid "github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) (*CommitGraph, *ObjectStore) {
	t.Helper()
	store := newTestStore(t)
	return NewCommitGraph(store), store
}

func writeCommit(t *testing.T, g *CommitGraph, msg string, parents Parents, tree Tree) gocid.Cid {
	t.Helper()
	id, err := g.Write(&Commit{
		Message:   msg,
		Timestamp: time.Now().UTC(),
		Parents:   parents,
		Tree:      tree,
	})
	require.NoError(t, err)
	return id
}

func writeRoot(t *testing.T, g *CommitGraph) gocid.Cid {
	t.Helper()
	id, err := g.Write(NewRootCommit())
	require.NoError(t, err)
	return id
}

func TestRootCommit_Reproducible(t *testing.T) {
	g1, _ := newTestGraph(t)
	g2, _ := newTestGraph(t)

	assert.Equal(t, writeRoot(t, g1), writeRoot(t, g2))
}

func TestCommit_EncodeDecode(t *testing.T) {
	g, store := newTestGraph(t)
	root := writeRoot(t, g)
	blob, err := store.Put([]byte("content"))
	require.NoError(t, err)

	id := writeCommit(t, g, "add f", Single(root), Tree{"dir/f.txt": blob})

	got, err := g.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "add f", got.Message)
	assert.Equal(t, SingleParent, got.Parents.Kind())
	assert.Equal(t, []gocid.Cid{root}, got.Parents.IDs())
	assert.Equal(t, blob, got.Tree["dir/f.txt"])
}

func TestCommit_MergeParentsOrdered(t *testing.T) {
	g, _ := newTestGraph(t)
	root := writeRoot(t, g)
	a := writeCommit(t, g, "a", Single(root), Tree{})
	b := writeCommit(t, g, "b", Single(root), Tree{})

	m := writeCommit(t, g, "merge", Merge(a, b), Tree{})

	got, err := g.Get(m)
	require.NoError(t, err)
	assert.True(t, got.Parents.IsMerge())
	assert.Equal(t, []gocid.Cid{a, b}, got.Parents.IDs())
	first, ok := got.Parents.First()
	require.True(t, ok)
	assert.Equal(t, a, first)
}

func TestGet_RejectsBlob(t *testing.T) {
	g, store := newTestGraph(t)
	blob, err := store.Put([]byte("not a commit"))
	require.NoError(t, err)

	_, err = g.Get(blob)
	assert.ErrorIs(t, err, ErrNotCommit)
}

func TestAncestorChain_EndsAtRoot(t *testing.T) {
	g, _ := newTestGraph(t)
	root := writeRoot(t, g)
	c1 := writeCommit(t, g, "c1", Single(root), Tree{})
	c2 := writeCommit(t, g, "c2", Single(c1), Tree{})
	side := writeCommit(t, g, "side", Single(root), Tree{})
	m := writeCommit(t, g, "merge", Merge(c2, side), Tree{})

	chain, err := g.AncestorChain(m)
	require.NoError(t, err)
	assert.Equal(t, []gocid.Cid{m, c2, c1, root}, chain)
}

func TestSplitPoint(t *testing.T) {
	g, _ := newTestGraph(t)
	root := writeRoot(t, g)
	base := writeCommit(t, g, "base", Single(root), Tree{})
	left := writeCommit(t, g, "left", Single(base), Tree{})
	right1 := writeCommit(t, g, "right1", Single(base), Tree{})
	right2 := writeCommit(t, g, "right2", Single(right1), Tree{})

	split, err := g.SplitPoint(left, right2)
	require.NoError(t, err)
	assert.Equal(t, base, split)

	// An ancestor is its own split point.
	split, err = g.SplitPoint(right2, right1)
	require.NoError(t, err)
	assert.Equal(t, right1, split)
}

func TestSplitPoint_FollowsFirstParentOnly(t *testing.T) {
	g, _ := newTestGraph(t)
	root := writeRoot(t, g)
	a := writeCommit(t, g, "a", Single(root), Tree{})
	b := writeCommit(t, g, "b", Single(root), Tree{})
	// b is reachable from m only through its second parent.
	m := writeCommit(t, g, "m", Merge(a, b), Tree{})

	split, err := g.SplitPoint(b, m)
	require.NoError(t, err)
	assert.Equal(t, root, split)
}

func TestLog_LazyAndRestartable(t *testing.T) {
	g, _ := newTestGraph(t)
	root := writeRoot(t, g)
	c1 := writeCommit(t, g, "c1", Single(root), Tree{})
	c2 := writeCommit(t, g, "c2", Single(c1), Tree{})

	seq := g.Log(c2)
	collect := func() []string {
		var msgs []string
		for c, err := range seq {
			require.NoError(t, err)
			msgs = append(msgs, c.Message)
		}
		return msgs
	}
	assert.Equal(t, []string{"c2", "c1", InitialMessage}, collect())
	assert.Equal(t, []string{"c2", "c1", InitialMessage}, collect())

	// Stopping early is allowed.
	for c, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "c2", c.Message)
		break
	}
}

func TestAll_EnumeratesOnlyCommits(t *testing.T) {
	g, store := newTestGraph(t)
	root := writeRoot(t, g)
	writeCommit(t, g, "c1", Single(root), Tree{})
	_, err := store.Put([]byte("a blob"))
	require.NoError(t, err)

	count := 0
	for _, err := range g.All() {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestResolve(t *testing.T) {
	g, _ := newTestGraph(t)
	root := writeRoot(t, g)
	c1 := writeCommit(t, g, "c1", Single(root), Tree{})

	got, err := g.Resolve(CIDToFilename(c1))
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	got, err = g.Resolve(DigestHex(c1)[:12])
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	// Every CID string shares the multibase/version/codec header.
	_, err = g.Resolve("b")
	assert.ErrorIs(t, err, ErrAmbiguousCommit)

	_, err = g.Resolve("zzzz")
	assert.ErrorIs(t, err, ErrUnknownCommit)

	_, err = g.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownCommit)
}
