package extract

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
)

// extractZip reads entries from a zip central directory (zip requires
// random access, hence io.ReaderAt rather than a plain stream) and
// materializes them under dst.
func extractZip(ra io.ReaderAt, size int64, dst string) error {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return formatErrorf("zip: %w", err)
	}

	for _, f := range zr.File {
		target, err := safeJoin(dst, f.Name)
		if err != nil {
			return formatErrorf("zip: %w", err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return ioErrorf("mkdir %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return ioErrorf("mkdir %s: %w", filepath.Dir(target), err)
		}

		if err := extractZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return formatErrorf("zip: opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(int64(f.Mode().Perm())))
	if err != nil {
		return ioErrorf("create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return formatErrorf("zip: reading %s: %w", f.Name, err)
	}
	return nil
}
