package repo

import (
	platformerrors "github.com/jmgilman/go/errors"
)

// Usage errors.
var (
	ErrNotInitialized     = platformerrors.New(platformerrors.CodeInvalidInput, "Not in an initialized Gitlet directory.")
	ErrAlreadyInitialized = platformerrors.New(platformerrors.CodeAlreadyExists, "A Gitlet version-control system already exists in the current directory.")
)

// Precondition violations.
var (
	ErrEmptyMessage              = platformerrors.New(platformerrors.CodeInvalidInput, "Please enter a commit message.")
	ErrNothingToCommit           = platformerrors.New(platformerrors.CodeConflict, "No changes added to the commit.")
	ErrFileNotFound              = platformerrors.New(platformerrors.CodeNotFound, "File does not exist.")
	ErrNothingToRemove           = platformerrors.New(platformerrors.CodeConflict, "No reason to remove the file.")
	ErrNoSuchBranch              = platformerrors.New(platformerrors.CodeNotFound, "A branch with that name does not exist.")
	ErrAlreadyOnBranch           = platformerrors.New(platformerrors.CodeConflict, "No need to checkout the current branch.")
	ErrBranchExists              = platformerrors.New(platformerrors.CodeAlreadyExists, "A branch with that name already exists.")
	ErrCannotRemoveCurrentBranch = platformerrors.New(platformerrors.CodeConflict, "Cannot remove the current branch.")
	ErrUncommittedChanges        = platformerrors.New(platformerrors.CodeConflict, "You have uncommitted changes.")
	ErrSelfMerge                 = platformerrors.New(platformerrors.CodeInvalidInput, "Cannot merge a branch with itself.")
)

// Safety violations.
var (
	ErrUntrackedFileConflict = platformerrors.New(platformerrors.CodeConflict, "There is an untracked file in the way; delete it, or add and commit it first.")
)

// Lookup failures.
var (
	ErrNoSuchCommit    = platformerrors.New(platformerrors.CodeNotFound, "No commit with that id exists.")
	ErrFileNotInCommit = platformerrors.New(platformerrors.CodeNotFound, "File does not exist in that commit.")
	ErrNoMatch         = platformerrors.New(platformerrors.CodeNotFound, "Found no commit with that message.")
)
