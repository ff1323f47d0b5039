package rules

// Stock policies matching the two packaging flavors.

// BulkRules excludes version control metadata, interpreter caches, and any
// previously built archive from whole-directory packages.
func BulkRules() []Rule {
	return []Rule{
		{Kind: NameEquals, Pattern: ".git"},
		{Kind: NameEquals, Pattern: "__pycache__"},
		{Kind: PathContains, Pattern: "node_modules/.cache"},
		{Kind: SuffixIn, Pattern: ".zip"},
	}
}

// DependencyRules trims a node_modules tree down to production content.
// The aws-sdk package ships with the Lambda runtime, so bundling it only
// inflates the package.
func DependencyRules() []Rule {
	return []Rule{
		{Kind: PathContains, Pattern: "aws-sdk"},
		{Kind: PathContains, Pattern: ".bin"},
		{Kind: PathContains, Pattern: "test"},
		{Kind: PathContains, Pattern: "tests"},
		{Kind: PathContains, Pattern: "example"},
		{Kind: PathContains, Pattern: "examples"},
		{Kind: PathContains, Pattern: "docs"},
		{Kind: PathContains, Pattern: ".cache"},
		{Kind: SuffixIn, Pattern: ".md"},
		{Kind: SuffixIn, Pattern: ".txt"},
		{Kind: SuffixIn, Pattern: ".map"},
		{Kind: SuffixIn, Pattern: ".ts"},
		{Kind: SuffixIn, Pattern: ".yml"},
		{Kind: SuffixIn, Pattern: ".yaml"},
		{Kind: SuffixIn, Pattern: ".zip"},
		{Kind: NamePrefix, Pattern: "."},
	}
}

// BulkPolicy compiles BulkRules.
func BulkPolicy() *Policy {
	return MustPolicy(BulkRules())
}

// DependencyPolicy compiles DependencyRules plus any extra configured rules.
func DependencyPolicy(extra []Rule) (*Policy, error) {
	return NewPolicy(append(DependencyRules(), extra...))
}
