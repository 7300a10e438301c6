package repo

import (
	"testing"

	gocid "github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
)

func blobID(t *testing.T, content string) gocid.Cid {
	t.Helper()
	id, err := dag.ComputeCID([]byte(content))
	require.NoError(t, err)
	return id
}

func TestPlanMerge(t *testing.T) {
	base, mine, theirs, other := blobID(t, "base"), blobID(t, "mine"), blobID(t, "theirs"), blobID(t, "other")

	split := dag.Tree{
		"untouched":   base,
		"cur-edit":    base,
		"giv-edit":    base,
		"giv-delete":  base,
		"both-same":   base,
		"both-differ": base,
		"del-vs-edit": base,
	}
	cur := dag.Tree{
		"untouched":   base,
		"cur-edit":    mine,
		"giv-edit":    base,
		"giv-delete":  base,
		"both-same":   other,
		"both-differ": mine,
		"cur-add":     mine,
		"add-add":     mine,
	}
	giv := dag.Tree{
		"untouched":   base,
		"cur-edit":    base,
		"giv-edit":    theirs,
		"both-same":   other,
		"both-differ": theirs,
		"del-vs-edit": theirs,
		"giv-add":     theirs,
		"add-add":     theirs,
	}

	plan := planMerge(split, cur, giv)
	got := make(map[string]mergeAction, len(plan))
	for _, step := range plan {
		got[step.path] = step.action
	}

	assert.Equal(t, map[string]mergeAction{
		"giv-edit":    takeGiven,
		"giv-delete":  takeGiven,
		"giv-add":     takeGiven,
		"both-differ": conflict,
		"del-vs-edit": conflict,
		"add-add":     conflict,
	}, got)

	for i := 1; i < len(plan); i++ {
		assert.Less(t, plan[i-1].path, plan[i].path)
	}
}

func TestConflictBody(t *testing.T) {
	assert.Equal(t, "<<<<<<< HEAD\nmine=======\ntheirs>>>>>>>\n", string(conflictBody([]byte("mine"), []byte("theirs"))))
	assert.Equal(t, "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>\n", string(conflictBody(nil, []byte("theirs\n"))))
}

// divergedRepo builds master and feat from a common base commit.
func divergedRepo(t *testing.T, base map[string]string) (*Repository, func(name, content string)) {
	t.Helper()
	r, fs := newTestRepo(t)
	for name, content := range base {
		writeFile(t, fs, name, content)
		require.NoError(t, r.Add(name))
	}
	_, err := r.Commit("base")
	require.NoError(t, err)
	require.NoError(t, r.Branch("feat"))

	write := func(name, content string) {
		writeFile(t, fs, name, content)
		require.NoError(t, r.Add(name))
	}
	return r, write
}

func TestMerge_Conflict(t *testing.T) {
	r, fs := newTestRepo(t)
	commitFile(t, r, fs, "f", "base", "base")
	require.NoError(t, r.Branch("feat"))
	curTip := commitFile(t, r, fs, "f", "mine", "mine").ID

	require.NoError(t, r.CheckoutBranch("feat"))
	givTip := commitFile(t, r, fs, "f", "theirs", "theirs").ID
	require.NoError(t, r.CheckoutBranch("master"))

	res, err := r.Merge("feat")
	require.NoError(t, err)
	assert.Equal(t, MergeCommitted, res.Outcome)
	assert.True(t, res.HasConflicts())
	assert.Equal(t, []string{"f"}, res.Conflicts)

	want := "<<<<<<< HEAD\nmine=======\ntheirs>>>>>>>\n"
	assert.Equal(t, want, readFile(t, fs, "f"))

	c := res.Commit
	require.NotNil(t, c)
	assert.Equal(t, "Merged feat into master.", c.Message)
	assert.True(t, c.Parents.IsMerge())
	assert.Equal(t, []gocid.Cid{curTip, givTip}, c.Parents.IDs())

	data, err := r.ReadBlob(c.Tree["f"])
	require.NoError(t, err)
	assert.Equal(t, want, string(data), "merge commit captures the marker file")

	tip, err := r.BranchTip("master")
	require.NoError(t, err)
	assert.Equal(t, c.ID, tip)
}

func TestMerge_DeleteVersusModifyConflict(t *testing.T) {
	r, fs := newTestRepo(t)
	commitFile(t, r, fs, "f", "base", "base")
	commitFile(t, r, fs, "other", "o", "other")
	require.NoError(t, r.Branch("feat"))
	require.NoError(t, r.Rm("f"))
	_, err := r.Commit("drop f")
	require.NoError(t, err)

	require.NoError(t, r.CheckoutBranch("feat"))
	commitFile(t, r, fs, "f", "theirs\n", "edit f")
	require.NoError(t, r.CheckoutBranch("master"))
	assertMissing(t, fs, "f")

	res, err := r.Merge("feat")
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, res.Conflicts)
	assert.Equal(t, "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>\n", readFile(t, fs, "f"))
}

func TestMerge_TakesGivenChanges(t *testing.T) {
	r, write := divergedRepo(t, map[string]string{"a": "1", "b": "1", "d": "1"})
	fs := r.fs

	write("a", "2")
	_, err := r.Commit("master edits a")
	require.NoError(t, err)

	require.NoError(t, r.CheckoutBranch("feat"))
	write("b", "2")
	write("c", "new")
	require.NoError(t, r.Rm("d"))
	_, err = r.Commit("feat edits")
	require.NoError(t, err)
	require.NoError(t, r.CheckoutBranch("master"))

	res, err := r.Merge("feat")
	require.NoError(t, err)
	assert.Equal(t, MergeCommitted, res.Outcome)
	assert.False(t, res.HasConflicts())

	assert.Equal(t, "2", readFile(t, fs, "a"))
	assert.Equal(t, "2", readFile(t, fs, "b"))
	assert.Equal(t, "new", readFile(t, fs, "c"))
	assertMissing(t, fs, "d")
	assert.Equal(t, []string{"a", "b", "c"}, res.Commit.Tree.Paths())

	st, err := r.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
	assert.Empty(t, st.Removed)
	assert.Empty(t, st.Modified)
}

func TestMerge_ConvergedChanges(t *testing.T) {
	r, write := divergedRepo(t, map[string]string{"a": "1"})

	write("a", "same")
	_, err := r.Commit("master")
	require.NoError(t, err)
	require.NoError(t, r.CheckoutBranch("feat"))
	write("a", "same")
	_, err = r.Commit("feat")
	require.NoError(t, err)
	require.NoError(t, r.CheckoutBranch("master"))

	res, err := r.Merge("feat")
	require.NoError(t, err)
	assert.Equal(t, MergeCommitted, res.Outcome)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "same", readFile(t, r.fs, "a"))
}

func TestMerge_UpToDate(t *testing.T) {
	r, write := divergedRepo(t, map[string]string{"a": "1"})
	write("a", "2")
	c, err := r.Commit("ahead")
	require.NoError(t, err)

	res, err := r.Merge("feat")
	require.NoError(t, err)
	assert.Equal(t, MergeUpToDate, res.Outcome)
	assert.Nil(t, res.Commit)

	tip, err := r.BranchTip("master")
	require.NoError(t, err)
	assert.Equal(t, c.ID, tip)
}

func TestMerge_FastForward(t *testing.T) {
	r, write := divergedRepo(t, map[string]string{"a": "1"})
	before, err := r.BranchTip("master")
	require.NoError(t, err)

	require.NoError(t, r.CheckoutBranch("feat"))
	write("a", "2")
	write("b", "new")
	featTip, err := r.Commit("feat")
	require.NoError(t, err)
	require.NoError(t, r.CheckoutBranch("master"))

	res, err := r.Merge("feat")
	require.NoError(t, err)
	assert.Equal(t, MergeFastForward, res.Outcome)
	assert.Nil(t, res.Commit)

	tip, err := r.BranchTip("master")
	require.NoError(t, err)
	assert.Equal(t, featTip.ID, tip)
	assert.Equal(t, "2", readFile(t, r.fs, "a"))
	assert.Equal(t, "new", readFile(t, r.fs, "b"))

	var ids []gocid.Cid
	for c, err := range r.Log() {
		require.NoError(t, err)
		assert.False(t, c.Parents.IsMerge())
		ids = append(ids, c.ID)
	}
	assert.Equal(t, featTip.ID, ids[0])
	assert.Equal(t, before, ids[1])
}

func TestMerge_Preconditions(t *testing.T) {
	r, write := divergedRepo(t, map[string]string{"a": "1"})

	_, err := r.Merge("nope")
	assert.ErrorIs(t, err, ErrNoSuchBranch)
	_, err = r.Merge("master")
	assert.ErrorIs(t, err, ErrSelfMerge)

	write("a", "dirty")
	_, err = r.Merge("feat")
	assert.ErrorIs(t, err, ErrUncommittedChanges)
	_, err = r.Merge("master")
	assert.ErrorIs(t, err, ErrUncommittedChanges, "staging is checked first")
}

func TestMerge_UntrackedFileInTheWay(t *testing.T) {
	r, write := divergedRepo(t, map[string]string{"a": "1"})
	write("a", "2")
	masterTip, err := r.Commit("master")
	require.NoError(t, err)

	require.NoError(t, r.CheckoutBranch("feat"))
	write("new.txt", "from feat")
	_, err = r.Commit("feat adds new.txt")
	require.NoError(t, err)
	require.NoError(t, r.CheckoutBranch("master"))

	writeFile(t, r.fs, "new.txt", "untracked")
	_, err = r.Merge("feat")
	assert.ErrorIs(t, err, ErrUntrackedFileConflict)

	assert.Equal(t, "untracked", readFile(t, r.fs, "new.txt"))
	tip, err := r.BranchTip("master")
	require.NoError(t, err)
	assert.Equal(t, masterTip.ID, tip)
	st, err := r.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
}
