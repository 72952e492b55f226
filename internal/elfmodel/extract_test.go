package elfmodel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStabilityOf(t *testing.T) {
	cases := map[string]Stability{
		"lib/vndk-30/libfoo.so":   StabilityStable,
		"lib/VNDK/libfoo.so":      StabilityStable,
		"lib64/libfoo.so":         StabilityUnstable,
	}
	for path, want := range cases {
		if got := stabilityOf(path); got != want {
			t.Errorf("stabilityOf(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestStabilityOfIgnoresFilenameVndkToken(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "libvndksupport.so"), []byte("not an elf file"), 0o644); err != nil {
		t.Fatal(err)
	}

	libs, err := walk(dir, ModeDefined, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(libs) != 1 {
		t.Fatalf("expected 1 library, got %d", len(libs))
	}
	if libs[0].Stability != StabilityUnstable {
		t.Errorf("libvndksupport.so outside any vndk directory: got %q, want %q", libs[0].Stability, StabilityUnstable)
	}
}

func TestOwnerTrieResolve(t *testing.T) {
	trie := newOwnerTrie(map[string]string{
		"/apex/com.android.foo": "com.android.foo",
	})

	if got := trie.Resolve("apex/com.android.foo/lib64"); got != "com.android.foo" {
		t.Fatalf("Resolve matched prefix = %q, want com.android.foo", got)
	}
	if got := trie.Resolve("system/lib64"); got != DefaultOwner {
		t.Fatalf("Resolve unmatched = %q, want %q", got, DefaultOwner)
	}
}

func TestOwnerTrieEmptyDefaultsToPlatform(t *testing.T) {
	trie := newOwnerTrie(nil)
	if got := trie.Resolve("any/path"); got != DefaultOwner {
		t.Fatalf("Resolve with empty table = %q, want %q", got, DefaultOwner)
	}
}

func TestIgnoreSetMatch(t *testing.T) {
	is := newIgnoreSet([]string{"tests/**", "*.bak.so"})
	if !is.Match("tests/fixtures/libfoo.so") {
		t.Error("expected tests/** to match")
	}
	if !is.Match("libfoo.bak.so") {
		t.Error("expected *.bak.so to match")
	}
	if is.Match("lib/libfoo.so") {
		t.Error("did not expect lib/libfoo.so to match")
	}
}

func TestWalkSkipsMalformedELFWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "libbroken.so"), []byte("not an elf file"), 0o644); err != nil {
		t.Fatal(err)
	}
	subdir := filepath.Join(dir, "vndk-30")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(subdir, "libbroken2.so"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	libs, err := walk(dir, ModeDefined, Options{})
	if err != nil {
		t.Fatalf("walk returned error, want nil (malformed files must not abort): %v", err)
	}
	if len(libs) != 2 {
		t.Fatalf("expected 2 libraries despite malformed ELF, got %d", len(libs))
	}
	for _, lib := range libs {
		if len(lib.Symbols) != 0 {
			t.Errorf("expected empty symbol set for malformed file %s, got %v", lib.Name, lib.Symbols)
		}
	}
	if libs[0].Name != "libbroken.so" || libs[1].Name != "libbroken2.so" {
		t.Fatalf("unexpected library order: %+v", libs)
	}
	if libs[1].Stability != StabilityStable {
		t.Errorf("expected libbroken2.so under vndk-30 to be stable, got %q", libs[1].Stability)
	}
}

func TestIgnorePathsSkipsDirectory(t *testing.T) {
	dir := t.TempDir()
	ignored := filepath.Join(dir, "tests")
	if err := os.MkdirAll(ignored, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ignored, "libfixture.so"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "libreal.so"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	libs, err := walk(dir, ModeDefined, Options{IgnorePaths: []string{"tests/**"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(libs) != 1 || libs[0].Name != "libreal.so" {
		t.Fatalf("expected only libreal.so, got %+v", libs)
	}
}
