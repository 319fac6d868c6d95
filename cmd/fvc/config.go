package main

import (
	"fmt"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Wind-River/fvc-go/internal/traversal"
)

// Config is the resolved, validated configuration for one run.
type Config struct {
	Binary        bool
	Verbosity     int
	ShowExamples  bool
	OutputPath    string
	ExtractPolicy traversal.Policy
	JSON          bool
	Files         []string
}

// cliConfig holds the kingpin pointer fields populated by app.Parse.
type cliConfig struct {
	app *kingpin.Application

	Binary        *bool
	Verbose       *int
	Examples      *bool
	Output        *string
	ExtractPolicy *string
	JSON          *bool
	Files         *[]string
}

func newCLIConfig() *cliConfig {
	app := kingpin.New("fvc", "Compute a File Verification Code over files, directories, and archives.")

	c := &cliConfig{app: app}
	c.Binary = app.Flag("binary", "emit raw 37-byte binary output instead of hex").Short('b').Bool()
	c.Verbose = app.Flag("verbose", "increase log verbosity (repeatable)").Short('v').Counter()
	c.Examples = app.Flag("examples", "print usage examples and exit").Short('e').Bool()
	c.Output = app.Flag("output", "write the result to FILE instead of stdout").Short('o').Default(envOr("FVC_OUTPUT", "")).String()
	c.ExtractPolicy = app.Flag("extract-policy", "extraction policy: extension, all, or none").
		Default(envOr("FVC_EXTRACT_POLICY", "extension")).Enum("extension", "all", "none")
	c.JSON = app.Flag("json", "print the archive tree as JSON instead of the FVC code").Bool()
	c.Files = app.Arg("files", "paths to include").Required().Strings()

	return c
}

// Validate migrates the parsed kingpin fields into a Config, applying
// environment-variable overrides on top of the flag defaults.
func (c *cliConfig) Validate() (*Config, error) {
	if len(*c.Files) == 0 {
		return nil, fmt.Errorf("at least one file path is required")
	}

	policy, err := traversal.ParsePolicy(*c.ExtractPolicy)
	if err != nil {
		return nil, err
	}

	verbosity := *c.Verbose
	if v, ok := envToInt("FVC_VERBOSE"); ok {
		verbosity = v
	}

	binary := *c.Binary
	if b, ok := envToBool("FVC_BINARY"); ok {
		binary = b
	}

	return &Config{
		Binary:        binary,
		Verbosity:     verbosity,
		ShowExamples:  *c.Examples,
		OutputPath:    *c.Output,
		ExtractPolicy: policy,
		JSON:          *c.JSON,
		Files:         *c.Files,
	}, nil
}
