package rules

import (
	"fmt"
	"path"
	"strings"
)

// Kind identifies how a rule pattern is matched against a candidate entry.
type Kind string

const (
	// PathContains matches when the pattern appears anywhere in the
	// slash-normalized directory path of the candidate.
	PathContains Kind = "path_contains"
	// NameEquals matches when the candidate's base name equals the pattern.
	NameEquals Kind = "name_equals"
	// SuffixIn matches when the candidate's base name ends with the pattern.
	SuffixIn Kind = "suffix"
	// NamePrefix matches when the candidate's base name starts with the pattern.
	NamePrefix Kind = "name_prefix"
)

// Rule is one declarative exclusion rule. Rules are data, not control flow,
// so policies can come from configuration and be tested in isolation.
type Rule struct {
	Kind    Kind   `yaml:"kind"`
	Pattern string `yaml:"pattern"`
}

func (r Rule) String() string {
	return fmt.Sprintf("%s(%s)", r.Kind, r.Pattern)
}

// Policy is a compiled set of exclusion rules. A Policy is stateless and
// safe for reuse across packaging runs.
type Policy struct {
	pathContains []string
	nameEquals   []string
	suffixes     []string
	namePrefixes []string
}

// NewPolicy validates and compiles a rule list into a Policy.
func NewPolicy(ruleList []Rule) (*Policy, error) {
	p := &Policy{}
	for _, r := range ruleList {
		if r.Pattern == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPattern, r.Kind)
		}
		switch r.Kind {
		case PathContains:
			p.pathContains = append(p.pathContains, r.Pattern)
		case NameEquals:
			p.nameEquals = append(p.nameEquals, r.Pattern)
		case SuffixIn:
			p.suffixes = append(p.suffixes, r.Pattern)
		case NamePrefix:
			p.namePrefixes = append(p.namePrefixes, r.Pattern)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
		}
	}
	return p, nil
}

// MustPolicy compiles a rule list and panics on invalid rules.
// Intended for the stock policies defined in this package.
func MustPolicy(ruleList []Rule) *Policy {
	p, err := NewPolicy(ruleList)
	if err != nil {
		panic(err)
	}
	return p
}

// ExcludeDir reports whether a directory should be pruned from traversal.
// relPath is the slash-normalized path of the directory relative to the walk
// root (including the directory's own name); name is its base name.
// Only path and name rules apply to directories: suffix and dot-prefix rules
// target files.
func (p *Policy) ExcludeDir(relPath, name string) bool {
	relPath = Normalize(relPath)
	for _, s := range p.pathContains {
		if strings.Contains(relPath, s) {
			return true
		}
	}
	for _, n := range p.nameEquals {
		if name == n {
			return true
		}
	}
	return false
}

// ExcludeFile reports whether a file should be omitted from the archive.
// relDir is the slash-normalized directory path containing the file, relative
// to the walk root ("." or "" for the root itself); name is the file name.
// Path rules match the containing directory only, never the file name, so a
// "test" path rule does not exclude a file named latest.js.
func (p *Policy) ExcludeFile(relDir, name string) bool {
	relDir = Normalize(relDir)
	if relDir == "." {
		relDir = ""
	}
	for _, s := range p.pathContains {
		if strings.Contains(relDir, s) {
			return true
		}
	}
	for _, n := range p.nameEquals {
		if name == n {
			return true
		}
	}
	for _, suf := range p.suffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	for _, pre := range p.namePrefixes {
		if strings.HasPrefix(name, pre) {
			return true
		}
	}
	return false
}

// Normalize converts a filesystem path to the forward-slash form rules are
// evaluated against.
func Normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
