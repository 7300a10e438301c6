package fuse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

func TestTreeEntries(t *testing.T) {
	blob, err := dag.ComputeCID([]byte("x"))
	require.NoError(t, err)
	tree := dag.Tree{
		"README":        blob,
		"src/main.go":   blob,
		"src/util/a.go": blob,
		"src/util/b.go": blob,
		"srcfile":       blob,
	}

	assert.Equal(t, []treeEntry{
		{name: "README"},
		{name: "src", isDir: true},
		{name: "srcfile"},
	}, treeEntries(tree, ""))

	assert.Equal(t, []treeEntry{
		{name: "main.go"},
		{name: "util", isDir: true},
	}, treeEntries(tree, "src"))

	assert.Empty(t, treeEntries(tree, "missing"))
}

func TestSliceAt(t *testing.T) {
	data := []byte("hello")
	assert.Equal(t, []byte("hel"), sliceAt(data, 0, 3))
	assert.Equal(t, []byte("lo"), sliceAt(data, 3, 10))
	assert.Nil(t, sliceAt(data, 5, 1))
	assert.Nil(t, sliceAt(data, 9, 1))
}

func TestCommitJSONAndHead(t *testing.T) {
	fs := memfs.New()
	r, err := repo.Init(fs)
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(fs, "a.txt", []byte("x"), 0644))
	require.NoError(t, r.Add("a.txt"))
	c, err := r.Commit("first")
	require.NoError(t, err)

	data, err := commitJSON(c)
	require.NoError(t, err)
	var v commitView
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, dag.CIDToFilename(c.ID), v.ID)
	assert.Equal(t, "first", v.Message)
	assert.Len(t, v.Parents, 1)
	assert.Equal(t, dag.CIDToFilename(c.Tree["a.txt"]), v.Tree["a.txt"])

	head := string(branchHead(r))
	assert.True(t, strings.HasPrefix(head, "master "))
	assert.Contains(t, head, dag.CIDToFilename(c.ID))
}
