package traversal

import "fmt"

// Policy selects how Engine.extractOrProcess treats a regular file.
type Policy int

const (
	// PolicyExtension attempts extraction only when classify.Classify
	// reports Maybe or Yes; otherwise the file is hashed as bytes.
	PolicyExtension Policy = iota
	// PolicyAll attempts extraction on every regular file, regardless
	// of the classifier's verdict.
	PolicyAll
	// PolicyNone never attempts extraction; every regular file is
	// hashed as bytes.
	PolicyNone
)

// String renders the policy the way the CLI's --extract-policy flag
// spells it.
func (p Policy) String() string {
	switch p {
	case PolicyExtension:
		return "extension"
	case PolicyAll:
		return "all"
	case PolicyNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the CLI's --extract-policy flag value.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "extension":
		return PolicyExtension, nil
	case "all":
		return PolicyAll, nil
	case "none":
		return PolicyNone, nil
	default:
		return 0, fmt.Errorf("traversal: unrecognized extract policy %q", s)
	}
}
