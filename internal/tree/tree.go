// Package tree holds the FVC recursion's result shapes: a leaf File
// record, an Archive record (with nested files/archives), a Directory
// record, and the Collection variant returned by each recursive step.
package tree

import (
	"encoding/json"

	"github.com/Wind-River/fvc-go/internal/digest"
)

// File is a leaf: a regular file discovered during traversal.
// Immutable once constructed.
type File struct {
	Name   string        `json:"name"`
	Size   uint64        `json:"size"`
	SHA256 digest.Digest `json:"sha256"`
}

// MarshalJSON renders SHA256 as a lowercase hex digest rather than the
// default byte-array form.
func (f File) MarshalJSON() ([]byte, error) {
	type alias struct {
		Name   string `json:"name"`
		Size   uint64 `json:"size"`
		SHA256 string `json:"sha256"`
	}
	return json.Marshal(alias{Name: f.Name, Size: f.Size, SHA256: f.SHA256.Hex()})
}

// Archive is an archive whose contents were successfully extracted
// and recursed into. Files and Archives are keyed by path relative to
// the archive root. Built bottom-up during extraction; immutable once
// the subtree is complete.
type Archive struct {
	Name     string             `json:"name"`
	Size     uint64             `json:"size"`
	SHA256   digest.Digest      `json:"sha256"`
	Files    map[string]File    `json:"files"`
	Archives map[string]Archive `json:"archives"`
}

// MarshalJSON mirrors File's hex-encoded sha256 rendering.
func (a Archive) MarshalJSON() ([]byte, error) {
	type alias struct {
		Name     string             `json:"name"`
		Size     uint64             `json:"size"`
		SHA256   string             `json:"sha256"`
		Files    map[string]File    `json:"files"`
		Archives map[string]Archive `json:"archives"`
	}
	return json.Marshal(alias{
		Name: a.Name, Size: a.Size, SHA256: a.SHA256.Hex(),
		Files: a.Files, Archives: a.Archives,
	})
}

// Directory is the same shape as Archive, minus the name/size/hash
// triple an Archive carries for its own packed bytes (a directory has
// no "packed bytes" of its own).
type Directory struct {
	Path     string             `json:"directory"`
	Files    map[string]File    `json:"files"`
	Archives map[string]Archive `json:"archives"`
}

// NewArchive returns an empty Archive ready to accumulate files and
// sub-archives via AddFile/AddArchive.
func NewArchive(name string, size uint64, sha256 digest.Digest) Archive {
	return Archive{
		Name: name, Size: size, SHA256: sha256,
		Files:    make(map[string]File),
		Archives: make(map[string]Archive),
	}
}

// AddFile records a leaf file at relativePath within a.
func (a Archive) AddFile(relativePath string, f File) {
	a.Files[relativePath] = f
}

// AddArchive records a nested archive at relativePath within a.
func (a Archive) AddArchive(relativePath string, sub Archive) {
	a.Archives[relativePath] = sub
}

// NewDirectory returns an empty Directory rooted at path.
func NewDirectory(path string) Directory {
	return Directory{
		Path:     path,
		Files:    make(map[string]File),
		Archives: make(map[string]Archive),
	}
}

// AddFile records a leaf file at relativePath within d.
func (d Directory) AddFile(relativePath string, f File) {
	d.Files[relativePath] = f
}

// AddArchive records a nested archive at relativePath within d.
func (d Directory) AddArchive(relativePath string, sub Archive) {
	d.Archives[relativePath] = sub
}

// Kind discriminates which variant a Collection holds.
type Kind int

const (
	// KindEmpty carries no contribution to the FVC at all (e.g. a
	// cycle was detected and the archive was skipped).
	KindEmpty Kind = iota
	KindFile
	KindArchive
	KindDirectory
)

// Collection is the tagged-variant result of one recursive traversal
// step: Empty, a single File, an Archive, or a Directory.
type Collection struct {
	kind      Kind
	file      File
	archive   Archive
	directory Directory
}

// Empty is the Collection carrying no contribution.
var Empty = Collection{kind: KindEmpty}

// NewFile wraps f as a Collection.
func NewFile(f File) Collection { return Collection{kind: KindFile, file: f} }

// NewArchiveCollection wraps a as a Collection.
func NewArchiveCollection(a Archive) Collection { return Collection{kind: KindArchive, archive: a} }

// NewDirectoryCollection wraps d as a Collection.
func NewDirectoryCollection(d Directory) Collection {
	return Collection{kind: KindDirectory, directory: d}
}

// Kind reports which variant c holds.
func (c Collection) Kind() Kind { return c.kind }

// File returns the wrapped File; only meaningful when Kind() == KindFile.
func (c Collection) File() File { return c.file }

// Archive returns the wrapped Archive; only meaningful when
// Kind() == KindArchive.
func (c Collection) Archive() Archive { return c.archive }

// Directory returns the wrapped Directory; only meaningful when
// Kind() == KindDirectory.
func (c Collection) Directory() Directory { return c.directory }

// MarshalJSON serializes a Collection as whichever concrete shape it
// holds, or JSON null for Empty.
func (c Collection) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindEmpty:
		return []byte("null"), nil
	case KindFile:
		return json.Marshal(c.file)
	case KindArchive:
		return json.Marshal(c.archive)
	case KindDirectory:
		return json.Marshal(c.directory)
	default:
		return []byte("null"), nil
	}
}

// Flatten walks c depth-first and emits every leaf File's digest to
// emit, in the order encountered (the FVCAccumulator sorts internally,
// so this order has no effect on the final code). An Archive's own
// packed-bytes digest is never emitted when its kind is KindArchive —
// only the leaves underneath it contribute.
func Flatten(c Collection, emit func(digest.Digest)) {
	switch c.kind {
	case KindFile:
		emit(c.file.SHA256)
	case KindArchive:
		flattenArchive(c.archive, emit)
	case KindDirectory:
		flattenDirectory(c.directory, emit)
	case KindEmpty:
		// no contribution
	}
}

func flattenArchive(a Archive, emit func(digest.Digest)) {
	for _, f := range a.Files {
		emit(f.SHA256)
	}
	for _, sub := range a.Archives {
		flattenArchive(sub, emit)
	}
}

func flattenDirectory(d Directory, emit func(digest.Digest)) {
	for _, f := range d.Files {
		emit(f.SHA256)
	}
	for _, sub := range d.Archives {
		flattenArchive(sub, emit)
	}
}
