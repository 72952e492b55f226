package elfmodel

import (
	"debug/elf"
	"os"
	"path/filepath"
	"strings"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
)

// Mode selects which half of a shared object's dynamic symbol table an
// Options-driven walk retains.
type Mode int

const (
	// ModeDefined retains GLOBAL/WEAK symbols with a defined section
	// index, producing an ApiModel.
	ModeDefined Mode = iota
	// ModeUndefined retains symbols with an undefined (UND) section
	// index regardless of binding, producing a VendorFootprint.
	ModeUndefined
)

const vndkToken = "vndk"

// Options configures a directory walk.
type Options struct {
	// APIOwners maps APEX path prefixes (relative to the scan root) to
	// owner names. Nil or empty means every library defaults to
	// DefaultOwner.
	APIOwners map[string]string
	// IgnorePaths holds glob patterns (relative to the scan root);
	// matching files and directories are skipped entirely.
	IgnorePaths []string
	// Cache, if non-nil, is consulted and populated for each scanned
	// file keyed by content hash.
	Cache *Cache
}

// ExtractDefined walks dir and produces an ApiModel of defined symbols.
func ExtractDefined(dir string, apiLevel int, opts Options) (ApiModel, error) {
	libs, err := walk(dir, ModeDefined, opts)
	if err != nil {
		return ApiModel{}, err
	}
	return ApiModel{APILevel: apiLevel, Libraries: libs}, nil
}

// ExtractUndefined walks dir and produces a VendorFootprint of undefined
// references.
func ExtractUndefined(dir string, apiLevel int, opts Options) (VendorFootprint, error) {
	libs, err := walk(dir, ModeUndefined, opts)
	if err != nil {
		return VendorFootprint{}, err
	}
	return VendorFootprint{APILevel: apiLevel, Libraries: libs}, nil
}

func walk(root string, mode Mode, opts Options) ([]Library, error) {
	log := diagnostics.For(diagnostics.StageExtract)
	owners := newOwnerTrie(opts.APIOwners)
	ignores := newIgnoreSet(opts.IgnorePaths)

	libs := []Library{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.With(map[string]any{"file": path}).Warnf("walk error: %v", err)
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if ignores.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".so") {
			return nil
		}

		lib, libErr := extractOne(path, rel, mode, owners, opts.Cache)
		if libErr != nil {
			log.With(map[string]any{"file": path}).Warnf("skipping unreadable/malformed ELF: %v", libErr)
			lib = Library{
				Name:      d.Name(),
				Stability: stabilityOf(filepath.Dir(rel)),
				Owner:     owners.Resolve(filepath.Dir(rel)),
				Symbols:   []Symbol{},
			}
		}
		libs = append(libs, lib)
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortLibraries(libs)
	return libs, nil
}

func stabilityOf(relPath string) Stability {
	if strings.Contains(strings.ToLower(relPath), vndkToken) {
		return StabilityStable
	}
	return StabilityUnstable
}

func extractOne(path, relPath string, mode Mode, owners *ownerTrie, cache *Cache) (Library, error) {
	name := filepath.Base(path)
	stability := stabilityOf(filepath.Dir(relPath))
	owner := owners.Resolve(filepath.Dir(relPath))

	if cache != nil {
		if syms, ok, err := cache.Get(path, mode); err == nil && ok {
			return Library{Name: name, Stability: stability, Owner: owner, Symbols: syms}, nil
		}
	}

	f, err := elf.Open(path)
	if err != nil {
		return Library{}, err
	}
	defer f.Close()

	syms, err := dynamicSymbols(f, mode)
	if err != nil {
		return Library{}, err
	}

	if cache != nil {
		_ = cache.Put(path, mode, syms)
	}

	return Library{Name: name, Stability: stability, Owner: owner, Symbols: syms}, nil
}

func dynamicSymbols(f *elf.File, mode Mode) ([]Symbol, error) {
	raw, err := f.DynamicSymbols()
	if err != nil {
		// A shared object with no dynamic symbol table (e.g. a stub)
		// contributes an empty set rather than aborting the walk.
		if err == elf.ErrNoSymbols {
			return []Symbol{}, nil
		}
		return nil, err
	}

	var out []Symbol
	for _, s := range raw {
		if s.Name == "" {
			continue
		}
		bind := elf.ST_BIND(s.Info)
		undefined := s.Section == elf.SHN_UNDEF

		switch mode {
		case ModeUndefined:
			if !undefined {
				continue
			}
			out = append(out, Symbol{Name: s.Name, Visibility: visibilityOf(bind)})
		default: // ModeDefined
			if undefined {
				continue
			}
			if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
				continue
			}
			out = append(out, Symbol{Name: s.Name, Visibility: visibilityOf(bind)})
		}
	}
	if out == nil {
		out = []Symbol{}
	}
	return out, nil
}

func visibilityOf(bind elf.SymBind) Visibility {
	if bind == elf.STB_WEAK {
		return VisibilityWeak
	}
	return VisibilityPublic
}
