// Command fvc computes a File Verification Code (FVC2) over one or
// more files, directories, or archives.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Wind-River/fvc-go/internal/extract"
	"github.com/Wind-River/fvc-go/internal/output"
	"github.com/Wind-River/fvc-go/internal/traversal"
)

const examplesText = `Examples:
  fvc foo.txt bar.txt              hash two files, combine their content
  fvc ./project                    walk a directory, hashing every file
  fvc bundle.tar.gz                extract and recurse into an archive
  fvc -b -o out.bin ./project      write the raw 37-byte code to out.bin
  fvc --extract-policy=none a.zip  hash a.zip's own bytes, never extract it
  fvc --json ./project             print the archive tree instead of the code
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cli := newCLIConfig()
	cli.app.UsageWriter(stderr)

	if _, err := cli.app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "fvc: %s\n", err)
		return 2
	}

	cfg, err := cli.Validate()
	if err != nil {
		fmt.Fprintf(stderr, "fvc: %s\n", err)
		return 2
	}

	if cfg.ShowExamples {
		fmt.Fprint(stdout, examplesText)
		return 0
	}

	logger, err := buildLogger(cfg.Verbosity)
	if err != nil {
		fmt.Fprintf(stderr, "fvc: %s\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	engine := traversal.NewEngine(traversal.ExtractorFunc(extract.Extract), extract.IsFormatError)
	engine.Logger = logger

	if cfg.JSON {
		return runJSON(engine, cfg, stdout, stderr, logger)
	}
	return runCode(engine, cfg, stdout, stderr, logger)
}

func runCode(engine *traversal.Engine, cfg *Config, stdout, stderr io.Writer, logger interface {
	Errorw(string, ...interface{})
}) int {
	code, err := engine.Calculate(cfg.ExtractPolicy, cfg.Files)
	if err != nil {
		logger.Errorw("fvc: calculation failed", "error", err)
		return 1
	}

	dst, closeFn, err := openOutput(cfg.OutputPath, stdout)
	if err != nil {
		logger.Errorw("fvc: opening output", "error", err)
		return 1
	}
	defer closeFn()

	out := &output.PlainOutput{Device: dst}
	if cfg.Binary {
		if _, err := out.Write(code[:]); err != nil {
			logger.Errorw("fvc: writing output", "error", err)
			return 1
		}
		return 0
	}
	if _, err := out.Println(code.Hex()); err != nil {
		logger.Errorw("fvc: writing output", "error", err)
		return 1
	}
	return 0
}

func runJSON(engine *traversal.Engine, cfg *Config, stdout, stderr io.Writer, logger interface {
	Errorw(string, ...interface{})
}) int {
	cols, err := engine.BuildCollections(cfg.ExtractPolicy, cfg.Files)
	if err != nil {
		logger.Errorw("fvc: calculation failed", "error", err)
		return 1
	}

	dst, closeFn, err := openOutput(cfg.OutputPath, stdout)
	if err != nil {
		logger.Errorw("fvc: opening output", "error", err)
		return 1
	}
	defer closeFn()

	encoded, err := json.MarshalIndent(cols, "", "  ")
	if err != nil {
		logger.Errorw("fvc: encoding tree as JSON", "error", err)
		return 1
	}

	out := &output.PlainOutput{Device: dst}
	if _, err := out.Println(string(encoded)); err != nil {
		logger.Errorw("fvc: writing output", "error", err)
		return 1
	}
	return 0
}

// openOutput resolves the CLI's -o/--output flag to a writer: stdout
// when empty, or a freshly created file. The caller's close function
// is a no-op for stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, f.Close, nil
}
