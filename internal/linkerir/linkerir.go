// Package linkerir builds and patches the linker namespace intermediate
// representation that downstream tooling renders into linker.config.json.
// It merges three inputs: an optional existing config, the plan-driven
// vndk_compat namespace synthesis, and a policy's declarative patches.
package linkerir

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

// Link is an outbound edge from one namespace to another.
type Link struct {
	Target             string `json:"target"`
	AllowAllSharedLibs bool   `json:"allow_all_shared_libs"`
}

// Namespace is one linker namespace node.
type Namespace struct {
	Name           string   `json:"name"`
	Isolated       bool     `json:"isolated"`
	Visible        bool     `json:"visible"`
	Links          []Link   `json:"links"`
	PermittedPaths []string `json:"permitted_paths"`
	SearchPaths    []string `json:"search_paths"`
}

// AddLink appends target if this namespace has no link to it yet.
// First write wins: a namespace already linked to target is left alone,
// matching the "avoid duplicates" behavior of the tool this package
// replaces.
func (ns *Namespace) AddLink(target string, allowAll bool) {
	for _, l := range ns.Links {
		if l.Target == target {
			return
		}
	}
	ns.Links = append(ns.Links, Link{Target: target, AllowAllSharedLibs: allowAll})
}

// AddPermittedPath idempotently adds a permitted search path.
func (ns *Namespace) AddPermittedPath(path string) {
	for _, p := range ns.PermittedPaths {
		if p == path {
			return
		}
	}
	ns.PermittedPaths = append(ns.PermittedPaths, path)
}

// AddSearchPath idempotently adds a library search path.
func (ns *Namespace) AddSearchPath(path string) {
	for _, p := range ns.SearchPaths {
		if p == path {
			return
		}
	}
	ns.SearchPaths = append(ns.SearchPaths, path)
}

// Config is the full namespace graph, keyed by namespace name.
type Config struct {
	nodes map[string]*Namespace
}

// New returns an empty namespace graph.
func New() *Config {
	return &Config{nodes: map[string]*Namespace{}}
}

// GetOrCreate returns the named namespace, creating it (isolated and
// visible by default) if absent.
func (c *Config) GetOrCreate(name string) *Namespace {
	if ns, ok := c.nodes[name]; ok {
		return ns
	}
	ns := &Namespace{Name: name, Isolated: true, Visible: true}
	c.nodes[name] = ns
	return ns
}

// Has reports whether a namespace with the given name already exists.
func (c *Config) Has(name string) bool {
	_, ok := c.nodes[name]
	return ok
}

// AddLink is a convenience wrapper around GetOrCreate(source).AddLink.
func (c *Config) AddLink(source, target string, allowAll bool) {
	c.GetOrCreate(source).AddLink(target, allowAll)
}

type wireConfig struct {
	Namespaces []Namespace `json:"namespaces"`
}

// Load reads an existing linker.config.json. A missing path is not an
// error: it yields an empty graph, matching the optional --input-config
// flag on vndk-linker.
func Load(path string) (*Config, error) {
	c := New()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading linker config %s: %w", path, err)
	}
	var wire wireConfig
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing linker config %s: %w", path, err)
	}
	for _, ns := range wire.Namespaces {
		node := c.GetOrCreate(ns.Name)
		node.Isolated = ns.Isolated
		node.Visible = ns.Visible
		node.Links = append(node.Links, ns.Links...)
		for _, p := range ns.PermittedPaths {
			node.AddPermittedPath(p)
		}
		for _, p := range ns.SearchPaths {
			node.AddSearchPath(p)
		}
	}
	return c, nil
}

// SynthesizeFromPlan ensures the vndk_compat_v{vendor_api_level} namespace
// exists, carries the /system/lib64 and /system/lib vndk-v{V} directories
// as permitted paths, and is linked bidirectionally with default.
func SynthesizeFromPlan(c *Config, plan diffengine.Plan) string {
	name := fmt.Sprintf("vndk_compat_v%d", plan.VendorAPILevel)
	ns := c.GetOrCreate(name)
	ns.AddPermittedPath(fmt.Sprintf("/system/lib64/vndk-v%d", plan.VendorAPILevel))
	ns.AddPermittedPath(fmt.Sprintf("/system/lib/vndk-v%d", plan.VendorAPILevel))
	c.AddLink(name, "default", true)
	c.AddLink("default", name, true)
	return name
}

// ApplyPolicyPatch merges a policy's linker_config section into c.
// Patching a namespace that does not exist logs a warning and creates it,
// matching the AST patcher this package replaces.
func ApplyPolicyPatch(c *Config, patch policy.LinkerPatch, diag *diagnostics.Logger) {
	for _, nsPatch := range patch.Namespaces {
		switch {
		case nsPatch.Add != nil:
			applyAdd(c, nsPatch.Name, nsPatch.Add)
		case nsPatch.Patch != nil:
			applyPatch(c, nsPatch.Name, nsPatch.Patch, diag)
		}
	}
}

func applyAdd(c *Config, name string, add *policy.NamespaceAdd) {
	if c.Has(name) {
		// add is insert-if-absent; an existing namespace is left untouched.
		return
	}
	ns := c.GetOrCreate(name)
	if add.Isolated != nil {
		ns.Isolated = *add.Isolated
	}
	if add.Visible != nil {
		ns.Visible = *add.Visible
	}
	for _, l := range add.Links {
		ns.AddLink(l.Target, l.AllowAllSharedLibs)
	}
	for _, p := range add.PermittedPaths {
		ns.AddPermittedPath(p)
	}
	for _, p := range add.SearchPaths {
		ns.AddSearchPath(p)
	}
}

func applyPatch(c *Config, name string, patch *policy.NamespacePatchBody, diag *diagnostics.Logger) {
	existed := c.Has(name)
	ns := c.GetOrCreate(name)
	if !existed && diag != nil {
		diag.Warnf("namespace %q not found for patching, creating it", name)
	}
	for _, op := range patch.Links {
		if op.Add != nil {
			ns.AddLink(op.Add.Target, op.Add.AllowAllSharedLibs)
		}
	}
}

// Export renders the graph as canonical, sorted JSON: namespaces ordered
// by name, and each namespace's links/paths ordered too, so the same
// inputs always produce the same bytes.
func Export(c *Config) ([]byte, error) {
	names := make([]string, 0, len(c.nodes))
	for name := range c.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	wire := wireConfig{Namespaces: make([]Namespace, 0, len(names))}
	for _, name := range names {
		node := *c.nodes[name]

		links := append([]Link{}, node.Links...)
		sort.Slice(links, func(i, j int) bool { return links[i].Target < links[j].Target })
		node.Links = links

		paths := append([]string{}, node.PermittedPaths...)
		sort.Strings(paths)
		node.PermittedPaths = paths

		search := append([]string{}, node.SearchPaths...)
		sort.Strings(search)
		node.SearchPaths = search

		wire.Namespaces = append(wire.Namespaces, node)
	}
	return json.MarshalIndent(wire, "", "  ")
}
