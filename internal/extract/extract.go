// Package extract implements the ArchiveExtractor collaborator:
// extracting an archive at a source path into a destination
// directory, detecting both the compression layer (gzip/bzip2/xz/
// zstd/lz4) and the container layer (tar/zip) by magic bytes rather
// than trusting the file's extension, the way a real "support all
// formats and filters" extractor must (an archive can be renamed;
// the classifier already made its extension-based guess upstream —
// this package verifies it against the actual bytes).
package extract

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// peekSize is large enough to cover every compression magic number we
// recognize and the tar "ustar" magic at offset 257.
const peekSize = 512

type compression int

const (
	compNone compression = iota
	compGzip
	compBzip2
	compXz
	compZstd
	compLz4
)

func detectCompression(header []byte) compression {
	switch {
	case hasPrefix(header, []byte{0x1f, 0x8b}):
		return compGzip
	case hasPrefix(header, []byte("BZh")):
		return compBzip2
	case hasPrefix(header, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		return compXz
	case hasPrefix(header, []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return compZstd
	case hasPrefix(header, []byte{0x04, 0x22, 0x4d, 0x18}):
		return compLz4
	default:
		return compNone
	}
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) >= len(prefix) && bytes.Equal(b[:len(prefix)], prefix)
}

type container int

const (
	containerNone container = iota
	containerTar
	containerZip
)

func detectContainer(header []byte) container {
	if hasPrefix(header, []byte{'P', 'K', 0x03, 0x04}) || hasPrefix(header, []byte{'P', 'K', 0x05, 0x06}) {
		return containerZip
	}
	if len(header) >= 262 && bytes.Equal(header[257:262], []byte("ustar")) {
		return containerTar
	}
	return containerNone
}

// Extract implements the ArchiveExtractor contract: it
// extracts src into dst, preserving relative paths. Every failure is
// classified as either an *IOError (fatal upstream: disk full,
// permission denied, …) or a *FormatError (src is not a recognized,
// complete archive — upstream falls back to leaf-file treatment).
func Extract(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return ioErrorf("opening %s: %w", src, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, peekSize)
	header, _ := br.Peek(peekSize)
	comp := detectCompression(header)

	var content io.Reader = br
	switch comp {
	case compGzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return formatErrorf("gzip: %w", err)
		}
		defer gr.Close()
		content = gr
	case compBzip2:
		content = bzip2.NewReader(br)
	case compXz:
		xr, err := xz.NewReader(br)
		if err != nil {
			return formatErrorf("xz: %w", err)
		}
		content = xr
	case compZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return formatErrorf("zstd: %w", err)
		}
		defer zr.Close()
		content = zr
	case compLz4:
		content = lz4.NewReader(br)
	}

	cbr := bufio.NewReaderSize(content, peekSize)
	innerHeader, _ := cbr.Peek(peekSize)

	switch detectContainer(innerHeader) {
	case containerTar:
		return extractTar(cbr, dst)
	case containerZip:
		data, err := io.ReadAll(cbr)
		if err != nil {
			return classifyReadErr(err)
		}
		return extractZip(bytes.NewReader(data), int64(len(data)), dst)
	default:
		if comp == compNone {
			return formatErrorf("%s: not a recognized archive", src)
		}
		// a bare compressed file (e.g. foo.txt.gz, not foo.tar.gz):
		// extract as the single decompressed file.
		return extractSingleFile(cbr, dst, deriveName(src))
	}
}

func classifyReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatErrorf("truncated archive: %w", err)
	}
	return formatErrorf("reading archive: %w", err)
}

// deriveName strips a recognized compression suffix from src's
// basename, e.g. "foo.txt.gz" -> "foo.txt".
func deriveName(src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "gz", "bz2", "xz", "zst", "lz4", "lzma", "z", "tgz":
		return strings.TrimSuffix(base, ext)
	default:
		return base
	}
}

func extractSingleFile(r io.Reader, dst, name string) error {
	if name == "" {
		name = "data"
	}
	target := filepath.Join(dst, name)
	out, err := os.Create(target)
	if err != nil {
		return ioErrorf("creating %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return classifyReadErr(err)
	}
	return nil
}

// safeJoin joins dst and an archive entry's name, rejecting any entry
// that would escape dst (an absolute path, or a "../" climb) — the
// "zip slip" path-traversal guard every real archive extractor needs.
func safeJoin(dst, name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination directory", name)
	}
	return filepath.Join(dst, cleaned), nil
}
