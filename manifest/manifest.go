// Package manifest handles abcasm.toml project configuration.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "abcasm.toml"

// Manifest represents an abcasm.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Source  Source        `toml:"source"`
	Compile CompileConfig `toml:"compile"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`

	// Dir is the directory containing the abcasm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures listing file locations.
type Source struct {
	Dirs      []string `toml:"dirs"`
	Extension string   `toml:"extension"`
}

// CompileConfig configures frame-count computation.
type CompileConfig struct {
	MergePrivateNamespaces bool `toml:"merge-private-namespaces"`
	Workers                int  `toml:"workers"`           // 0 means GOMAXPROCS
	MaxStackWarning        int  `toml:"max-stack-warning"` // 0 disables the warning
}

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Load parses an abcasm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s in %s", undecoded[0], path)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	if m.Compile.Workers < 0 {
		return nil, fmt.Errorf("%s: compile.workers must not be negative", path)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Extension == "" {
		m.Source.Extension = ".abcasm"
	} else if !strings.HasPrefix(m.Source.Extension, ".") {
		m.Source.Extension = "." + m.Source.Extension
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".abcasm", "cache.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find an abcasm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// SourceFiles returns the listing files under the source directories,
// sorted by path. Missing source directories are skipped.
func (m *Manifest) SourceFiles() ([]string, error) {
	var files []string
	for _, dir := range m.SourceDirPaths() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && os.IsNotExist(err) {
					return fs.SkipDir
				}
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == m.Source.Extension {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// CachePath returns the absolute path of the snapshot cache.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// LogFilePath returns the absolute path of the log file, or "" to log to
// stderr.
func (m *Manifest) LogFilePath() string {
	if m.Log.File == "" {
		return ""
	}
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
