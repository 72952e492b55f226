package elfmodel

import "github.com/gobwas/glob"

// ignoreSet compiles a policy's ignore_paths glob patterns once and
// matches scanned paths (relative to the scan root) against them.
type ignoreSet struct {
	globs []glob.Glob
}

// newIgnoreSet compiles the given glob patterns. Invalid patterns are
// dropped rather than failing the scan — an unscannable policy pattern
// is not a reason to abort a batch (spec §7 propagation policy).
func newIgnoreSet(patterns []string) *ignoreSet {
	is := &ignoreSet{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		is.globs = append(is.globs, g)
	}
	return is
}

// Match reports whether relPath matches any compiled ignore pattern.
func (is *ignoreSet) Match(relPath string) bool {
	if is == nil {
		return false
	}
	for _, g := range is.globs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}
