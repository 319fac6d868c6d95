package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRunHexOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.txt")
	if err := os.WriteFile(path, []byte("foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	want := "4656433200" // FVC2\0 prefix
	got := stdout.String()
	if len(got) != 75 { // 74 hex chars + newline
		t.Fatalf("output length = %d, want 75: %q", len(got), got)
	}
	if got[:10] != want {
		t.Errorf("prefix = %q, want %q", got[:10], want)
	}
}

func TestRunBinaryOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.txt")
	if err := os.WriteFile(path, []byte("foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-b", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if stdout.Len() != 37 {
		t.Fatalf("binary output length = %d, want 37", stdout.Len())
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte{0x46, 0x56, 0x43, 0x32, 0x00}) {
		t.Errorf("binary output does not start with FVC2\\0 prefix: %x", stdout.Bytes())
	}
}

func TestRunMissingFileIsFatal(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "does-not-exist")}, &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a non-zero exit code for a missing input")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should stay empty on fatal error, got %q", stdout.String())
	}
}

func TestRunNoArgumentsIsUsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2 (usage error)", code)
	}
}

func TestRunExamples(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-e", "x"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if stdout.Len() == 0 {
		t.Error("expected example text on stdout")
	}
}

func TestRunJSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.txt")
	if err := os.WriteFile(path, []byte("foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"--json", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte(`"sha256"`)) {
		t.Errorf("expected JSON tree output containing sha256 field, got %q", stdout.String())
	}
}
