package repo

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchTable(t *testing.T) {
	b := BranchTable{}
	tip := blobID(t, "tip")

	assert.False(t, b.Has("master"))
	b.Set("master", tip)
	b.Set("alpha", tip)

	got, ok := b.Get("master")
	assert.True(t, ok)
	assert.Equal(t, tip, got)
	assert.Equal(t, []string{"alpha", "master"}, b.List())

	b.Delete("alpha")
	assert.Equal(t, []string{"master"}, b.List())
}

func TestState_SaveLoad(t *testing.T) {
	fs := memfs.New()
	root, other := blobID(t, "root"), blobID(t, "other")

	st := newState(root)
	st.Branches.Set("feat", other)
	st.Head = "feat"
	st.Staging.Stage("dir/a.txt", other)
	st.Staging.MarkRemoved("gone.txt")
	require.NoError(t, st.save(fs, "state.json"))

	loaded, err := loadState(fs, "state.json")
	require.NoError(t, err)
	assert.Equal(t, "feat", loaded.Head)
	assert.Equal(t, other, loaded.HeadCommit())
	assert.Equal(t, st.Branches, loaded.Branches)
	assert.Equal(t, []string{"dir/a.txt"}, loaded.Staging.Added())
	assert.Equal(t, []string{"gone.txt"}, loaded.Staging.Removed())
}

func TestLoadState_Missing(t *testing.T) {
	_, err := loadState(memfs.New(), "state.json")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoadState_HeadWithoutBranch(t *testing.T) {
	fs := memfs.New()
	root := blobID(t, "root")
	st := newState(root)
	st.Head = "ghost"
	require.NoError(t, st.save(fs, "state.json"))

	_, err := loadState(fs, "state.json")
	assert.ErrorContains(t, err, "ghost")
}

func TestLoadState_Corrupt(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "state.json", []byte("{not json"), 0644))

	_, err := loadState(fs, "state.json")
	assert.Error(t, err)
}
