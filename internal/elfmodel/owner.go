package elfmodel

import (
	"strings"

	patricia "github.com/tchap/go-patricia/v2/patricia"
)

// ownerTrie resolves a scanned library's owner by longest-prefix match of
// its containing directory against a table of known APEX mount points
// (e.g. "/apex/com.android.foo/" -> "com.android.foo"). This refines the
// vndk_api_model.py "owner": "platform" default, which the original
// Python comments flag as "can be refined with APEX info".
type ownerTrie struct {
	trie *patricia.Trie
}

// newOwnerTrie builds a trie from a map of APEX path prefix -> owner name.
// A nil or empty table yields a trie that never matches, so every library
// keeps the platform default.
func newOwnerTrie(apexPrefixes map[string]string) *ownerTrie {
	t := patricia.NewTrie()
	for prefix, owner := range apexPrefixes {
		key := normalizePrefix(prefix)
		if key == "" {
			continue
		}
		t.Insert(patricia.Prefix(key), owner)
	}
	return &ownerTrie{trie: t}
}

// Resolve returns the owner for a given relative directory, or
// DefaultOwner if no APEX prefix matches.
func (o *ownerTrie) Resolve(relDir string) string {
	if o == nil || o.trie == nil {
		return DefaultOwner
	}
	key := normalizePrefix(relDir)
	if key == "" {
		return DefaultOwner
	}

	best := DefaultOwner
	bestLen := -1
	o.trie.Visit(func(prefix patricia.Prefix, item patricia.Item) error {
		p := string(prefix)
		if strings.HasPrefix(key, p) && len(p) > bestLen {
			if owner, ok := item.(string); ok {
				best = owner
				bestLen = len(p)
			}
		}
		return nil
	})
	return best
}

func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
