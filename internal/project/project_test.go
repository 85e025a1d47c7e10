package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[compiler]\n")
	writeFile(t, filepath.Join(root, "src", "components", "App.vue"), "<template/>")

	got, ok, err := FindProjectRoot(filepath.Join(root, "src", "components", "App.vue"))
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot = %q,%v,%v", got, ok, err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("root = %q, want %q", got, want)
	}
	if RootOf(filepath.Join(root, "src", "App.vue")) != want {
		t.Errorf("RootOf mismatch")
	}
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{
		"b.vue", "a/A.VUE", "a/readme.md", "node_modules/x/y.vue", ".git/z.vue", "c.ts",
	} {
		writeFile(t, filepath.Join(root, p), "")
	}
	got, err := CollectFiles(root, []string{".vue", ".md"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "a", "A.VUE"),
		filepath.Join(root, "a", "readme.md"),
		filepath.Join(root, "b.vue"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if _, err := CollectFiles(filepath.Join(root, "b.vue"), nil); err == nil {
		t.Errorf("expected error for a file")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a, b := HashBytes([]byte("a")), HashBytes([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Errorf("Combine must depend on order")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Errorf("Combine must be deterministic")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Short = %q", a.Short())
	}
	if !PathWithin("/x/y", "/x/y/z") || PathWithin("/x/y", "/x/yz") {
		t.Errorf("PathWithin misbehaves")
	}
}
