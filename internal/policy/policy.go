// Package policy loads and represents the declarative resolution policy
// that tells the diff engine how to repair each ABI gap.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Action is the tagged action a PolicyRule assigns to a matched symbol.
type Action string

const (
	ActionShim     Action = "shim"
	ActionStub     Action = "stub"
	ActionSnapshot Action = "snapshot"
)

// Rule is a single policy rule: `{target, symbols, action, remap?}`.
// Rules sharing a target are applied in declaration order; first match
// wins (see Policy.Resolve).
type Rule struct {
	Target  string            `json:"target"`
	Symbols []string          `json:"symbols"`
	Action  Action            `json:"action"`
	Remap   map[string]string `json:"remap,omitempty"`

	symbolSet map[string]bool
}

func (r *Rule) matches(symbol string) bool {
	if r.symbolSet == nil {
		r.symbolSet = make(map[string]bool, len(r.Symbols))
		for _, s := range r.Symbols {
			r.symbolSet[s] = true
		}
	}
	return r.symbolSet[symbol]
}

// LinkerPatch is the optional `linker_config` section of a policy
// document. See internal/linkerir for how it is applied.
type LinkerPatch struct {
	Namespaces []NamespacePatch `json:"namespaces,omitempty"`
}

// NamespacePatch is one entry of a policy's linker_config.namespaces
// list: either an Add (insert-if-absent) or a Patch (merge links).
type NamespacePatch struct {
	Name  string          `json:"name"`
	Add   *NamespaceAdd   `json:"add,omitempty"`
	Patch *NamespacePatchBody `json:"patch,omitempty"`
}

// NamespaceAdd carries a full namespace node to insert if one with the
// same name does not already exist.
type NamespaceAdd struct {
	Isolated       *bool    `json:"isolated,omitempty"`
	Visible        *bool    `json:"visible,omitempty"`
	Links          []LinkPatch `json:"links,omitempty"`
	PermittedPaths []string `json:"permitted_paths,omitempty"`
	SearchPaths    []string `json:"search_paths,omitempty"`
}

// NamespacePatchBody carries structured merge operations for an existing
// (or auto-created) namespace.
type NamespacePatchBody struct {
	Links []LinkOp `json:"links,omitempty"`
}

// LinkOp is one `{add: Link}` entry inside a namespace patch's links list.
type LinkOp struct {
	Add *LinkPatch `json:"add,omitempty"`
}

// LinkPatch mirrors a NamespaceNode Link for policy documents.
type LinkPatch struct {
	Target             string `json:"target"`
	AllowAllSharedLibs bool   `json:"allow_all_shared_libs"`
}

// Policy is the top-level `{api_level, rules, linker_config}` document.
type Policy struct {
	APILevel     int         `json:"api_level"`
	Rules        []Rule      `json:"rules"`
	LinkerConfig LinkerPatch `json:"linker_config,omitempty"`
	// IgnorePaths supplements the core schema: glob patterns (relative to
	// a scan root) the model extractor skips entirely.
	IgnorePaths []string `json:"ignore_paths,omitempty"`
}

// Empty returns the zero-value policy substituted when a policy file is
// absent — every symbol then resolves to NONE/snapshot (spec §4.2, §7).
func Empty() Policy {
	return Policy{Rules: []Rule{}}
}

// Resolution is the outcome of matching a symbol against the policy.
type Resolution struct {
	Action   Action `json:"action"`
	Remap    string `json:"remap,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Resolve walks p.Rules in declaration order and returns the first rule
// whose target and symbol set match. If none match, the symbol falls
// through to {action: NONE, fallback: snapshot}.
func (p *Policy) Resolve(target, symbol string) Resolution {
	for i := range p.Rules {
		r := &p.Rules[i]
		if r.Target != target {
			continue
		}
		if !r.matches(symbol) {
			continue
		}
		res := Resolution{Action: r.Action}
		if remap, ok := r.Remap[symbol]; ok {
			res.Remap = remap
		}
		return res
	}
	return Resolution{Action: "NONE", Fallback: "snapshot"}
}

// RulesForTarget returns every rule declared for the given target, in
// declaration order.
func (p *Policy) RulesForTarget(target string) []Rule {
	var out []Rule
	for _, r := range p.Rules {
		if r.Target == target {
			out = append(out, r)
		}
	}
	return out
}

// Load reads a policy document from path. A missing file is not an
// error: it degrades to Empty() per spec §4.2/§7, and the caller is
// expected to log the resulting warning on the diagnostic channel.
func Load(path string) (Policy, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), false, nil
		}
		return Policy{}, false, fmt.Errorf("reading policy %s: %w", path, err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, false, fmt.Errorf("parsing policy %s: %w", path, err)
	}
	if p.Rules == nil {
		p.Rules = []Rule{}
	}
	return p, true, nil
}
