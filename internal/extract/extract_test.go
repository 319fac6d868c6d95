package extract

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bundle.tar.gz")
	writeTarGz(t, src, map[string]string{"foo.txt": "foo contents", "bar.txt": "bar contents"})

	dst := t.TempDir()
	if err := Extract(src, dst); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for name, want := range map[string]string{"foo.txt": "foo contents", "bar.txt": "bar contents"} {
		got, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bundle.zip")
	writeZip(t, src, map[string]string{"a/one.txt": "one", "two.txt": "two"})

	dst := t.TempDir()
	if err := Extract(src, dst); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "a", "one.txt"))
	if err != nil {
		t.Fatalf("reading a/one.txt: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("a/one.txt = %q, want %q", got, "one")
	}
}

func TestExtractBareGzip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "note.txt.gz")

	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	gw.Close()
	f.Close()

	dst := t.TempDir()
	if err := Extract(src, dst); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "note.txt"))
	if err != nil {
		t.Fatalf("reading note.txt: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("note.txt = %q, want hello", got)
	}
}

func TestExtractUnrecognizedIsFormatError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(src, []byte("just text, not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Extract(src, t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a non-archive file")
	}
	if !IsFormatError(err) {
		t.Errorf("got %T, want *FormatError", err)
	}
}

func TestExtractTruncatedZipIsFormatError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("x.txt")
	w.Write([]byte("x"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	full := buf.Bytes()
	// truncate the end-of-central-directory record so zip.NewReader fails to parse it.
	truncated := full[:len(full)-10]
	if err := os.WriteFile(src, truncated, 0o644); err != nil {
		t.Fatal(err)
	}

	err := Extract(src, t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a truncated zip")
	}
	if !IsFormatError(err) {
		t.Errorf("got %T, want *FormatError", err)
	}
}

func TestExtractMissingSourceIsIOError(t *testing.T) {
	err := Extract(filepath.Join(t.TempDir(), "does-not-exist.zip"), t.TempDir())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsIOError(err) {
		t.Errorf("got %T, want *IOError", err)
	}
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")

	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("../../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("pwned"))
	zw.Close()
	f.Close()

	err = Extract(src, t.TempDir())
	if err == nil {
		t.Fatal("expected a format error for a path-traversing entry")
	}
	if !IsFormatError(err) {
		t.Errorf("got %T, want *FormatError", err)
	}
}
