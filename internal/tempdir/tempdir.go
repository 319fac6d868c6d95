// Package tempdir manages scratch directories used to hold the
// extracted contents of an archive for the duration of one recursion
// frame. Every directory a Manager creates is guaranteed to be
// released on every exit path from that frame.
package tempdir

import (
	"os"
	"path/filepath"
)

// prefix identifies directories created by this package, so that an
// interrupted run can be recognized and swept up after the fact.
const prefix = "fvc_extracted_archive."

// Dir is a scratch directory owned by the recursion frame that
// acquired it. Close is preferred so release errors can be surfaced;
// if the caller forgets, a deferred Close at the call site is still
// required by the contract (Manager does not install a finalizer).
type Dir struct {
	path   string
	closed bool
}

// Path is the filesystem path of the scratch directory.
func (d *Dir) Path() string {
	return d.path
}

// Close removes the directory and everything under it. Safe to call
// more than once; subsequent calls are no-ops.
func (d *Dir) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return os.RemoveAll(d.path)
}

// Manager creates uniquely-named scratch directories.
type Manager struct {
	// Base overrides the parent directory new scratch directories are
	// created under. Empty means the OS default (os.MkdirTemp's
	// os.TempDir()).
	Base string
}

// Acquire creates a new scratch directory whose basename encodes
// archiveName for human traceability, e.g. when inspecting a stuck
// process's /tmp contents.
func (m Manager) Acquire(archiveName string) (*Dir, error) {
	pattern := prefix + sanitize(archiveName) + ".*"

	base := m.Base
	if base == "" {
		base = os.TempDir()
	}

	path, err := os.MkdirTemp(base, pattern)
	if err != nil {
		return nil, err
	}
	return &Dir{path: path}, nil
}

// sanitize strips path separators from a proposed archive name so it
// can be embedded in a single directory-name component.
func sanitize(name string) string {
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "archive"
	}
	return name
}
