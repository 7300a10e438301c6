package repo

import (
	"fmt"
	"iter"

	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/gitlet/internal/dag"
)

// Log yields commits from the head of the current branch back to the root,
// following first parents.
func (r *Repository) Log() iter.Seq2[*dag.Commit, error] {
	return r.graph.Log(r.state.HeadCommit())
}

// GlobalLog yields every commit ever made, in no particular order.
func (r *Repository) GlobalLog() iter.Seq2[*dag.Commit, error] {
	return r.graph.All()
}

// Find returns the IDs of all commits whose message is exactly message.
func (r *Repository) Find(message string) ([]gocid.Cid, error) {
	var ids []gocid.Cid
	for c, err := range r.graph.All() {
		if err != nil {
			return nil, err
		}
		if c.Message == message {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, message)
	}
	return ids, nil
}
