// Package classify implements the extractability heuristic: a pure,
// filename-only guess at whether a regular file is worth attempting
// to extract as an archive.
package classify

import (
	"os"
	"path/filepath"
	"strings"
)

// Confidence is the ternary classification result.
type Confidence int

const (
	// None means the path is almost certainly not an archive.
	None Confidence = 0
	// Maybe means the path might be an archive; ambiguous signal.
	Maybe Confidence = 50
	// Yes means the path looks like an archive.
	Yes Confidence = 100
)

// validExtensions is the closed set of extensions treated as archives,
// independent of the "pack" special case handled separately below.
var validExtensions = map[string]bool{
	"ar": true, "arj": true, "cpio": true, "dump": true, "jar": true,
	"7z": true, "zip": true, "pack": true, "pack2000": true, "tar": true,
	"bz2": true, "gz": true, "lzma": true, "snz": true, "xz": true,
	"z": true, "tgz": true, "rpm": true, "gem": true, "deb": true,
	"whl": true, "apk": true, "zst": true,
}

// Classify inspects path's extension (and, for the "pack" extension,
// one sibling-file check and one parent-directory-name check) and
// returns a confidence that path is an archive worth extracting.
//
// It performs at most one sibling-existence check and one parent-name
// comparison; it never probes file contents.
func Classify(path string) Confidence {
	ext := filepath.Ext(path)
	if ext == "" {
		return None
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	if ext == "pack" {
		return classifyPack(path)
	}

	if validExtensions[ext] {
		return Yes
	}
	return None
}

// classifyPack disambiguates a ".pack" file between a git pack file
// (not an archive) and a pack200 archive.
func classifyPack(path string) Confidence {
	idxPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".idx"
	hasIdx := fileExists(idxPath)

	inObjectsDir := filepath.Base(filepath.Dir(path)) == "objects"

	switch {
	case hasIdx && inObjectsDir:
		return None
	case hasIdx || inObjectsDir:
		return Maybe
	default:
		return Yes
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
