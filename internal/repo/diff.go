package repo

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// FileDiff is a line diff between the version that would be committed and
// the working file.
type FileDiff struct {
	Path  string
	Kind  ChangeKind
	Diffs []diffmatchpatch.Diff
}

// Unified renders the diff with "+", "-" and " " line prefixes.
func (d FileDiff) Unified() string {
	var b strings.Builder
	b.WriteString("--- a/" + d.Path + "\n")
	if d.Kind == Deleted {
		b.WriteString("+++ /dev/null\n")
	} else {
		b.WriteString("+++ b/" + d.Path + "\n")
	}
	for _, df := range d.Diffs {
		prefix := " "
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitLines(df.Text) {
			b.WriteString(prefix + line + "\n")
		}
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Diff compares each path's staged (or head) content with the working
// file. With no paths, every unstaged modification is diffed.
func (r *Repository) Diff(paths ...string) ([]FileDiff, error) {
	st, err := r.Status()
	if err != nil {
		return nil, err
	}
	changes := make(map[string]ChangeKind, len(st.Modified))
	for _, fc := range st.Modified {
		changes[fc.Path] = fc.Kind
	}

	if len(paths) == 0 {
		for _, fc := range st.Modified {
			paths = append(paths, fc.Path)
		}
	}

	head, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	dmp := diffmatchpatch.New()
	var out []FileDiff
	for _, p := range paths {
		clean, ok := r.wt.cleanPath(p)
		if !ok {
			continue
		}
		kind, changed := changes[clean]
		if !changed {
			continue
		}
		blob, staged := r.state.Staging.Staged(clean)
		if !staged {
			blob = head.Tree[clean]
		}
		before, err := r.store.Get(blob)
		if err != nil {
			return nil, err
		}
		var after []byte
		if kind == Modified {
			if after, err = r.wt.Read(clean); err != nil {
				return nil, err
			}
		}

		a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
		out = append(out, FileDiff{Path: clean, Kind: kind, Diffs: diffs})
	}
	return out, nil
}

