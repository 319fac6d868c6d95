// Package traversal implements the control spine of the system: it
// walks the inputs given to one "calculate" invocation, applies the
// extraction policy to every regular file it finds, recurses through
// extracted archives guarded by an ArchiveDAG, and feeds every leaf
// file's digest to an FVCAccumulator.
package traversal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Wind-River/fvc-go/internal/archivedag"
	"github.com/Wind-River/fvc-go/internal/classify"
	"github.com/Wind-River/fvc-go/internal/digest"
	"github.com/Wind-River/fvc-go/internal/fvc"
	"github.com/Wind-River/fvc-go/internal/tempdir"
	"github.com/Wind-River/fvc-go/internal/tree"
)

// ArchiveExtractor is the narrow collaborator contract the engine
// needs: extract src into dst, preserving relative paths.
// Implementations signal fatal vs non-fatal failures through the
// error's dynamic type; see internal/extract's *IOError/*FormatError.
type ArchiveExtractor interface {
	Extract(src, dst string) error
}

// ExtractorFunc adapts a plain function (such as extract.Extract) to
// the ArchiveExtractor interface.
type ExtractorFunc func(src, dst string) error

// Extract calls f(src, dst).
func (f ExtractorFunc) Extract(src, dst string) error { return f(src, dst) }

// Engine is the TraversalEngine: it owns nothing across invocations of
// Calculate except its configuration (the extractor, temp-dir manager,
// logger, and concurrency bound).
type Engine struct {
	Extractor ArchiveExtractor
	TempDirs  tempdir.Manager
	Logger    *zap.SugaredLogger
	// Concurrency bounds how many sibling leaf files are hashed at
	// once within one directory level. Zero or negative means
	// sequential (concurrency of 1).
	Concurrency int

	// IsFormatError classifies an error returned by Extractor.Extract
	// as a non-fatal format error (vs. a fatal I/O error). Defaults to
	// always-false (every extraction failure treated as fatal) if nil
	// — callers should set this to internal/extract.IsFormatError.
	IsFormatError func(error) bool
}

// NewEngine returns an Engine with the defaults a CLI would wire up:
// sequential-safe concurrency, a no-op logger, and an OS-default temp
// directory manager. Callers override fields as needed.
func NewEngine(extractor ArchiveExtractor, isFormatError func(error) bool) *Engine {
	return &Engine{
		Extractor:     extractor,
		Logger:        zap.NewNop().Sugar(),
		Concurrency:   8,
		IsFormatError: isFormatError,
	}
}

func (e *Engine) isFormatError(err error) bool {
	if e.IsFormatError == nil {
		return false
	}
	return e.IsFormatError(err)
}

func (e *Engine) logger() *zap.SugaredLogger {
	if e.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return e.Logger
}

// Calculate is the top-level entry point: it computes the FVC2 code of
// the multiset of leaf-file contents reachable from inputs under the
// given extraction policy.
func (e *Engine) Calculate(policy Policy, inputs []string) (fvc.Code, error) {
	cols, err := e.BuildCollections(policy, inputs)
	if err != nil {
		return fvc.Code{}, err
	}

	acc := &fvc.Accumulator{}
	for _, col := range cols {
		tree.Flatten(col, acc.IngestDigest)
	}
	return acc.Sum(), nil
}

// BuildCollections runs the same traversal as Calculate but returns the
// per-input Collection tree instead of folding it into an
// FVCAccumulator — the shape cmd/fvc's debug JSON surface exposes.
func (e *Engine) BuildCollections(policy Policy, inputs []string) ([]tree.Collection, error) {
	dag := archivedag.New()
	cols := make([]tree.Collection, 0, len(inputs))

	for _, input := range inputs {
		info, err := os.Lstat(input)
		if err != nil {
			return nil, fmt.Errorf("traversal: stat %s: %w", input, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(input)
			if err != nil {
				// dangling symlink: not fatal, just nothing to hash.
				e.logger().Warnw("skipping unresolvable symlink", "path", input, "error", err)
				continue
			}
			info = target
		}

		switch {
		case info.Mode().IsRegular():
			col, err := e.extractOrProcess(policy, nil, input, dag)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)

		case info.IsDir():
			files, archives, err := e.walkAndBuild(input, policy, nil, dag)
			if err != nil {
				return nil, err
			}
			dir := tree.NewDirectory(input)
			for name, f := range files {
				dir.AddFile(name, f)
			}
			for name, a := range archives {
				dir.AddArchive(name, a)
			}
			cols = append(cols, tree.NewDirectoryCollection(dir))

		default:
			e.logger().Warnw("skipping unreadable input", "path", input, "mode", info.Mode().String())
		}
	}

	return cols, nil
}

// extractOrProcess implements the decision table for whether to
// hash path as bytes or attempt extraction, and (if extraction is
// attempted) the cycle-avoidance / temp-dir / fallback protocol.
func (e *Engine) extractOrProcess(policy Policy, current *digest.Digest, path string, dag *archivedag.Graph) (tree.Collection, error) {
	attempt := false
	switch policy {
	case PolicyNone:
		attempt = false
	case PolicyExtension:
		attempt = classify.Classify(path) != classify.None
	case PolicyAll:
		attempt = true
	}

	if !attempt {
		return e.hashLeaf(path)
	}
	return e.attemptExtraction(policy, current, path, dag)
}

func (e *Engine) hashLeaf(path string) (tree.Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return tree.Empty, fmt.Errorf("traversal: stat %s: %w", path, err)
	}
	d, err := (digest.Hasher{}).File(path)
	if err != nil {
		return tree.Empty, fmt.Errorf("traversal: hashing %s: %w", path, err)
	}
	return tree.NewFile(tree.File{Name: filepath.Base(path), Size: uint64(info.Size()), SHA256: d}), nil
}

// attemptExtraction implements the "attempt extraction" procedure of
// the call site's policy, consulting the ArchiveDAG for cycle-avoidance
// protocol before ever invoking the extractor.
func (e *Engine) attemptExtraction(policy Policy, current *digest.Digest, path string, dag *archivedag.Graph) (tree.Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return tree.Empty, fmt.Errorf("traversal: stat %s: %w", path, err)
	}

	d, err := (digest.Hasher{}).File(path)
	if err != nil {
		return tree.Empty, fmt.Errorf("traversal: hashing %s: %w", path, err)
	}

	if dag.Contains(d) {
		if current != nil {
			switch dag.AddEdge(*current, d) {
			case archivedag.EdgeCycle:
				e.logger().Debugw("skipping archive: would close a cycle", "path", path)
				return tree.Empty, nil
			case archivedag.EdgeMissingSource:
				return tree.Empty, fmt.Errorf("traversal: invariant violation: archive dag missing source for %s", path)
			}
		}
		// current == nil: a top-level input re-visits an archive
		// already seen elsewhere with no enclosing scope to cycle
		// through. Proceed to extract it again; no edge to record.
	} else {
		dag.Insert(d)
	}

	tmp, err := e.TempDirs.Acquire(filepath.Base(path))
	if err != nil {
		return tree.Empty, fmt.Errorf("traversal: acquiring temp dir for %s: %w", path, err)
	}

	extractErr := e.Extractor.Extract(path, tmp.Path())

	switch {
	case extractErr == nil:
		files, archives, walkErr := e.walkAndBuild(tmp.Path(), policy, &d, dag)
		closeErr := tmp.Close()
		if walkErr != nil {
			return tree.Empty, walkErr
		}
		if closeErr != nil {
			return tree.Empty, fmt.Errorf("traversal: releasing temp dir for %s: %w", path, closeErr)
		}

		archive := tree.NewArchive(filepath.Base(path), uint64(info.Size()), d)
		for name, f := range files {
			archive.AddFile(name, f)
		}
		for name, a := range archives {
			archive.AddArchive(name, a)
		}
		return tree.NewArchiveCollection(archive), nil

	case e.isFormatError(extractErr):
		if policy == PolicyAll {
			e.logger().Debugw("extraction attempt failed, treating as leaf file", "path", path, "error", extractErr)
		} else {
			e.logger().Warnw("not a recognized archive, treating as leaf file", "path", path, "error", extractErr)
		}
		if closeErr := tmp.Close(); closeErr != nil {
			return tree.Empty, fmt.Errorf("traversal: releasing temp dir for %s: %w", path, closeErr)
		}
		return tree.NewFile(tree.File{Name: filepath.Base(path), Size: uint64(info.Size()), SHA256: d}), nil

	default:
		tmp.Close()
		return tree.Empty, fmt.Errorf("traversal: extracting %s: %w", path, extractErr)
	}
}

// walkAndBuild walks root recursively, flattening every regular file
// found (at any depth) into files/archives maps keyed by their path
// relative to root. Plain leaf hashing is bounded-concurrency; files
// that may need extraction are processed one at a time since
// extraction mutates the shared ArchiveDAG and acquires temp
// directories.
func (e *Engine) walkAndBuild(root string, policy Policy, current *digest.Digest, dag *archivedag.Graph) (map[string]tree.File, map[string]tree.Archive, error) {
	var leafPaths, candidatePaths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			e.logger().Warnw("skipping unreadable entry", "path", path, "mode", info.Mode().String())
			return nil
		}

		attempt := false
		switch policy {
		case PolicyExtension:
			attempt = classify.Classify(path) != classify.None
		case PolicyAll:
			attempt = true
		}
		if attempt {
			candidatePaths = append(candidatePaths, path)
		} else {
			leafPaths = append(leafPaths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("traversal: walking %s: %w", root, err)
	}

	files := make(map[string]tree.File)
	archives := make(map[string]tree.Archive)

	leafResults, err := e.hashLeavesConcurrently(leafPaths)
	if err != nil {
		return nil, nil, err
	}
	for path, f := range leafResults {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		files[rel] = f
	}

	for _, path := range candidatePaths {
		col, err := e.attemptExtraction(policy, current, path, dag)
		if err != nil {
			return nil, nil, err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		switch col.Kind() {
		case tree.KindFile:
			files[rel] = col.File()
		case tree.KindArchive:
			archives[rel] = col.Archive()
		case tree.KindEmpty:
			// cycle-skip: no contribution
		}
	}

	return files, archives, nil
}

// hashLeavesConcurrently computes the SHA-256 of every path in paths,
// bounded by e.Concurrency, and returns a path -> File map. It never
// touches the ArchiveDAG or a TempDirectory, so it is safe to
// parallelize: each goroutine writes only its own slot of a
// preallocated slice, and the result map is filled after all of them
// have finished.
func (e *Engine) hashLeavesConcurrently(paths []string) (map[string]tree.File, error) {
	results := make(map[string]tree.File, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	limit := e.Concurrency
	if limit <= 0 {
		limit = 1
	}

	type pair struct {
		path string
		file tree.File
	}
	out := make([]pair, len(paths))

	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(limit))

	for i, path := range paths {
		i, path := i, path
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("traversal: acquiring hash slot: %w", err)
		}
		g.Go(func() error {
			defer sem.Release(1)

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("traversal: stat %s: %w", path, err)
			}
			d, err := (digest.Hasher{}).File(path)
			if err != nil {
				return fmt.Errorf("traversal: hashing %s: %w", path, err)
			}
			out[i] = pair{path: path, file: tree.File{Name: filepath.Base(path), Size: uint64(info.Size()), SHA256: d}}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, p := range out {
		results[p.path] = p.file
	}
	return results, nil
}
