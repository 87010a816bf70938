package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "player"
version = "0.1.0"

[source]
dirs = ["src", "gen"]
extension = "asm"

[compile]
merge-private-namespaces = true
workers = 4
max-stack-warning = 64

[cache]
enabled = true
path = "/tmp/abcasm-cache.db"

[log]
verbosity = 2
file = "logs/abcasm.log"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "player" {
		t.Errorf("project name = %q, want player", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if diff := cmp.Diff([]string{"src", "gen"}, m.Source.Dirs); diff != "" {
		t.Errorf("source dirs mismatch (-want +got):\n%s", diff)
	}
	if m.Source.Extension != ".asm" {
		t.Errorf("source extension = %q, want .asm", m.Source.Extension)
	}
	want := CompileConfig{MergePrivateNamespaces: true, Workers: 4, MaxStackWarning: 64}
	if m.Compile != want {
		t.Errorf("compile = %+v, want %+v", m.Compile, want)
	}
	if !m.Cache.Enabled {
		t.Error("cache enabled = false, want true")
	}
	if m.CachePath() != "/tmp/abcasm-cache.db" {
		t.Errorf("cache path = %q, want the absolute path unchanged", m.CachePath())
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}
	if got, want := m.LogFilePath(), filepath.Join(m.Dir, "logs", "abcasm.log"); got != want {
		t.Errorf("log file = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Default source dir should be "src"
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("default source dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Source.Extension != ".abcasm" {
		t.Errorf("default extension = %q, want .abcasm", m.Source.Extension)
	}
	if got, want := m.CachePath(), filepath.Join(m.Dir, ".abcasm", "cache.db"); got != want {
		t.Errorf("default cache path = %q, want %q", got, want)
	}
	if m.Cache.Enabled || m.Compile.Workers != 0 || m.LogFilePath() != "" {
		t.Errorf("unexpected non-zero defaults: %+v", m)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[project\nname = 1", "parse error"},
		{"unknown key", "[compile]\nthreads = 3\n", "unknown key compile.threads"},
		{"negative workers", "[compile]\nworkers = -1\n", "compile.workers must not be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tc.content)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load error = %v, want it to mention %q", err, tc.want)
			}
		})
	}

	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of a directory without a manifest succeeded")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
	abs, _ := filepath.Abs(dir)
	if m.Dir != abs {
		t.Errorf("manifest dir = %q, want %q", m.Dir, abs)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("FindAndLoad = %+v, want nil", m)
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[source]
dirs = ["src", "missing"]
`)
	for _, f := range []string{"src/b.abcasm", "src/a.abcasm", "src/sub/c.abcasm", "src/notes.txt"} {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	files, err := m.SourceFiles()
	if err != nil {
		t.Fatalf("SourceFiles failed: %v", err)
	}
	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(m.Dir, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	want := []string{"src/a.abcasm", "src/b.abcasm", "src/sub/c.abcasm"}
	if diff := cmp.Diff(want, rel); diff != "" {
		t.Errorf("source files mismatch (-want +got):\n%s", diff)
	}
}
