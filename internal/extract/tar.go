package extract

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
)

// extractTar reads a tar stream from r (already decompressed, if it
// was ever compressed) and materializes it under dst. Only regular
// files and directories are written; symlinks, devices, and other
// special entries are skipped since they carry no content to hash.
func extractTar(r io.Reader, dst string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return formatErrorf("tar: %w", err)
		}

		target, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return formatErrorf("tar: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return ioErrorf("mkdir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return ioErrorf("mkdir %s: %w", filepath.Dir(target), err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(hdr.Mode))
			if err != nil {
				return ioErrorf("create %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return formatErrorf("tar: reading %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return ioErrorf("closing %s: %w", target, err)
			}
		default:
			// symlink, hardlink, device, fifo, etc — no content to hash.
		}
	}
}

func fileMode(mode int64) os.FileMode {
	m := os.FileMode(mode) & 0o777
	if m == 0 {
		return 0o644
	}
	return m
}
