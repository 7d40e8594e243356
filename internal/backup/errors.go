// Package backup provides snapshot and restore for the document store.
package backup

import "errors"

// ErrSnapshotNotFound indicates the requested snapshot does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")
