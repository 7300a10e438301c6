package repo

import (
	"testing"

	gocid "github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
)

func TestLog_NewestFirst(t *testing.T) {
	r, fs := newTestRepo(t)
	c1 := commitFile(t, r, fs, "a", "1", "one")
	c2 := commitFile(t, r, fs, "a", "2", "two")

	var msgs []string
	for c, err := range r.Log() {
		require.NoError(t, err)
		msgs = append(msgs, c.Message)
	}
	assert.Equal(t, []string{"two", "one", dag.InitialMessage}, msgs)
	assert.True(t, c2.Timestamp.After(c1.Timestamp))
}

func TestLog_StopsEarly(t *testing.T) {
	r, fs := newTestRepo(t)
	commitFile(t, r, fs, "a", "1", "one")
	commitFile(t, r, fs, "a", "2", "two")

	n := 0
	for range r.Log() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestGlobalLog_IncludesAllBranches(t *testing.T) {
	r, fs := newTestRepo(t)
	commitFile(t, r, fs, "a", "1", "one")
	require.NoError(t, r.Branch("feat"))
	require.NoError(t, r.CheckoutBranch("feat"))
	side := commitFile(t, r, fs, "b", "1", "side")
	require.NoError(t, r.CheckoutBranch("master"))
	require.NoError(t, r.RmBranch("feat"))

	seen := map[gocid.Cid]string{}
	for c, err := range r.GlobalLog() {
		require.NoError(t, err)
		seen[c.ID] = c.Message
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, "side", seen[side.ID], "commits outlive deleted branches")
}

func TestFind(t *testing.T) {
	r, fs := newTestRepo(t)
	c1 := commitFile(t, r, fs, "a", "1", "fix")
	commitFile(t, r, fs, "a", "2", "other")
	c3 := commitFile(t, r, fs, "a", "3", "fix")

	ids, err := r.Find("fix")
	require.NoError(t, err)
	assert.ElementsMatch(t, []gocid.Cid{c1.ID, c3.ID}, ids)

	_, err = r.Find("fi")
	assert.ErrorIs(t, err, ErrNoMatch)
}
