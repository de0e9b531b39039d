package pagecache

import "errors"

// Sentinel errors returned by collaborators. The Manager itself never
// propagates these out of Put/Get/Delete: it folds them into a boolean
// result plus a metric/log side effect. They are exported so collaborator
// implementations and tests can compare with errors.Is.
var (
	// ErrNotFound is returned by PageStore.Get/Delete when the requested
	// page id is absent. MetaStore reports absence via a bool instead.
	ErrNotFound = errors.New("pagecache: page not found")

	// ErrAlreadyExists is returned by PageStore.Put when a body already
	// exists for the page id; overwrites are disallowed by contract.
	ErrAlreadyExists = errors.New("pagecache: page already exists")

	// ErrSizeMismatch is returned by PageStore.Delete when the caller's
	// expected size does not match the stored body.
	ErrSizeMismatch = errors.New("pagecache: page size mismatch on delete")

	// ErrClosed is returned by PageStore methods invoked after Close.
	ErrClosed = errors.New("pagecache: page store is closed")
)
