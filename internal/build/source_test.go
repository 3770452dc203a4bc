package build

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeSourceTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func tarEntries(t *testing.T, dir string) map[string]string {
	t.Helper()

	matcher, err := loadIgnoreMatcher(dir)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeSourceTar(&buf, dir, matcher); err != nil {
		t.Fatal(err)
	}

	entries := map[string]string{}
	tr := tar.NewReader(&buf)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		var content bytes.Buffer
		if _, err := io.Copy(&content, tr); err != nil {
			t.Fatal(err)
		}
		entries[hdr.Name] = content.String()
	}
	return entries
}

func TestWriteSourceTar(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"main.go":        "package main\n",
		"pkg/util.go":    "package pkg\n",
		".git/HEAD":      "ref: refs/heads/main\n",
		".git/config":    "",
		"pkg/util_test.go": "package pkg\n",
	})

	entries := tarEntries(t, dir)

	if entries["main.go"] != "package main\n" {
		t.Errorf("main.go content = %q", entries["main.go"])
	}
	if _, ok := entries["pkg/"]; !ok {
		t.Error("directory entry pkg/ missing")
	}
	if _, ok := entries["pkg/util.go"]; !ok {
		t.Error("pkg/util.go missing")
	}

	for name := range entries {
		if name == ".git/" || name == ".git/HEAD" || name == ".git/config" {
			t.Errorf(".git contents included: %s", name)
		}
	}
}

func TestWriteSourceTarHonorsIgnoreFile(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		".slimignore":    "*.log\ndist/\n",
		"main.go":        "package main\n",
		"debug.log":      "noise",
		"dist/old.tar":   "stale",
		"docs/notes.log": "noise",
	})

	entries := tarEntries(t, dir)

	if _, ok := entries["main.go"]; !ok {
		t.Error("main.go missing")
	}
	if _, ok := entries["debug.log"]; ok {
		t.Error("debug.log included despite ignore pattern")
	}
	if _, ok := entries["dist/"]; ok {
		t.Error("dist/ included despite ignore pattern")
	}
	if _, ok := entries["dist/old.tar"]; ok {
		t.Error("dist/old.tar included despite ignore pattern")
	}
	if _, ok := entries["docs/notes.log"]; ok {
		t.Error("docs/notes.log included despite ignore pattern")
	}
	if _, ok := entries[".slimignore"]; !ok {
		t.Error("ignore file itself should still be included")
	}
}

func TestWriteSourceTarPrefersSlimignore(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		".slimignore": "a.txt\n",
		".gitignore":  "b.txt\n",
		"a.txt":       "a",
		"b.txt":       "b",
	})

	entries := tarEntries(t, dir)

	if _, ok := entries["a.txt"]; ok {
		t.Error("a.txt included despite .slimignore")
	}
	if _, ok := entries["b.txt"]; !ok {
		t.Error("b.txt excluded; .gitignore should be shadowed by .slimignore")
	}
}

func TestCopySourceRejectsMissingDir(t *testing.T) {
	recipe := testRecipe(t, nil)
	p := &pipeline{recipe: recipe, root: filepath.Join(t.TempDir(), "absent")}

	err := p.copySource(context.Background(), &fakeContainer{}, "/src")
	if err == nil {
		t.Fatal("expected error for missing source directory")
	}
}
