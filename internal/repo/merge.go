package repo

import (
	"fmt"

	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/gitlet/internal/dag"
)

// MergeOutcome says what a merge did.
type MergeOutcome int

const (
	// MergeCommitted means a two-parent merge commit was created.
	MergeCommitted MergeOutcome = iota
	// MergeUpToDate means the given branch is already an ancestor of the
	// current branch; nothing changed.
	MergeUpToDate
	// MergeFastForward means the current branch tip moved to the given tip
	// without a new commit.
	MergeFastForward
)

// MergeResult reports a completed merge. Commit is nil unless Outcome is
// MergeCommitted. Conflicts lists paths written with conflict markers.
type MergeResult struct {
	Outcome   MergeOutcome
	Commit    *dag.Commit
	Conflicts []string
}

// HasConflicts reports whether any path needed manual resolution.
func (m *MergeResult) HasConflicts() bool { return len(m.Conflicts) > 0 }

type mergeAction int

const (
	takeGiven mergeAction = iota + 1
	conflict
)

// mergeStep is the planned action for one path.
type mergeStep struct {
	path   string
	action mergeAction
	cur    gocid.Cid // undefined if current lacks the path
	giv    gocid.Cid // undefined if given lacks the path
}

// planMerge classifies every path in the union of the three trees. Paths
// that need no action are omitted. The plan is sorted by path.
func planMerge(split, cur, giv dag.Tree) []mergeStep {
	union := make(dag.Tree, len(split)+len(cur)+len(giv))
	for _, t := range []dag.Tree{split, cur, giv} {
		for p, id := range t {
			union[p] = id
		}
	}

	var plan []mergeStep
	for _, p := range union.Paths() {
		s, sok := split[p]
		c, cok := cur[p]
		g, gok := giv[p]

		curChanged := !same(sok, s, cok, c)
		givChanged := !same(sok, s, gok, g)
		switch {
		case !curChanged && !givChanged:
		case givChanged && !curChanged:
			plan = append(plan, mergeStep{path: p, action: takeGiven, cur: c, giv: g})
		case curChanged && !givChanged:
		case same(cok, c, gok, g):
		default:
			plan = append(plan, mergeStep{path: p, action: conflict, cur: c, giv: g})
		}
	}
	return plan
}

// same compares two optional blob IDs: absent equals absent.
func same(aok bool, a gocid.Cid, bok bool, b gocid.Cid) bool {
	if aok != bok {
		return false
	}
	return !aok || a.Equals(b)
}

// conflictBody renders the marker file for a conflicting path. A side that
// lacks the path contributes an empty segment.
func conflictBody(cur, giv []byte) []byte {
	body := make([]byte, 0, len(cur)+len(giv)+32)
	body = append(body, "<<<<<<< HEAD\n"...)
	body = append(body, cur...)
	body = append(body, "=======\n"...)
	body = append(body, giv...)
	body = append(body, ">>>>>>>\n"...)
	return body
}

// Merge merges the given branch into the current branch.
func (r *Repository) Merge(given string) (*MergeResult, error) {
	if !r.state.Staging.IsEmpty() {
		return nil, ErrUncommittedChanges
	}
	givTip, ok := r.state.Branches.Get(given)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchBranch, given)
	}
	current := r.state.Head
	if given == current {
		return nil, ErrSelfMerge
	}
	curTip := r.state.HeadCommit()

	splitID, err := r.graph.SplitPoint(curTip, givTip)
	if err != nil {
		return nil, err
	}
	givCommit, err := r.graph.Get(givTip)
	if err != nil {
		return nil, err
	}

	switch {
	case splitID.Equals(givTip):
		return &MergeResult{Outcome: MergeUpToDate}, nil
	case splitID.Equals(curTip):
		if err := r.materialize(givCommit.Tree); err != nil {
			return nil, err
		}
		r.state.Branches.Set(current, givTip)
		r.log.Printf("gitlet: fast-forwarded %s to %s", current, dag.CIDToFilename(givTip))
		return &MergeResult{Outcome: MergeFastForward}, nil
	}

	curCommit, err := r.graph.Get(curTip)
	if err != nil {
		return nil, err
	}
	splitCommit, err := r.graph.Get(splitID)
	if err != nil {
		return nil, err
	}

	plan := planMerge(splitCommit.Tree, curCommit.Tree, givCommit.Tree)

	// Only paths the merge writes can clobber an untracked file.
	writes := make(map[string]bool, len(plan))
	for _, step := range plan {
		if step.action == conflict || step.giv.Defined() {
			writes[step.path] = true
		}
	}
	if err := r.guardUntracked(curCommit.Tree, func(p string) bool { return writes[p] }); err != nil {
		return nil, err
	}

	bodies := make(map[string][]byte, len(plan))
	for _, step := range plan {
		body, err := r.mergeContent(step)
		if err != nil {
			return nil, err
		}
		bodies[step.path] = body
	}

	var conflicts []string
	for _, step := range plan {
		body := bodies[step.path]
		switch {
		case step.action == takeGiven && !step.giv.Defined():
			if err := r.wt.Remove(step.path); err != nil {
				return nil, err
			}
			r.state.Staging.MarkRemoved(step.path)
			continue
		case step.action == conflict:
			conflicts = append(conflicts, step.path)
		}
		blob, err := r.store.Put(body)
		if err != nil {
			return nil, err
		}
		if err := r.wt.Write(step.path, body); err != nil {
			return nil, err
		}
		r.state.Staging.Stage(step.path, blob)
	}

	msg := fmt.Sprintf("Merged %s into %s.", given, current)
	c, err := r.commit(msg, dag.Merge(curTip, givTip), curCommit, true)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		r.log.Printf("gitlet: merge of %s left %d conflicted path(s)", given, len(conflicts))
	}
	return &MergeResult{Outcome: MergeCommitted, Commit: c, Conflicts: conflicts}, nil
}

// mergeContent loads the bytes a step will write. Removals yield nil.
func (r *Repository) mergeContent(step mergeStep) ([]byte, error) {
	load := func(id gocid.Cid) ([]byte, error) {
		if !id.Defined() {
			return nil, nil
		}
		return r.store.Get(id)
	}
	giv, err := load(step.giv)
	if err != nil {
		return nil, err
	}
	if step.action == takeGiven {
		return giv, nil
	}
	cur, err := load(step.cur)
	if err != nil {
		return nil, err
	}
	return conflictBody(cur, giv), nil
}
