// abcasm CLI - assembles ABC method listings and reports their frame counts
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/abcasm/abc/semantics"
	"github.com/chazu/abcasm/abc/wire"
	"github.com/chazu/abcasm/build"
	"github.com/chazu/abcasm/cache"
	"github.com/chazu/abcasm/manifest"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// verbosity is a repeatable -v flag.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid verbosity %q", s)
	}
	*v = verbosity(n)
	return nil
}

// options are the command-line settings after merging the manifest.
type options struct {
	verbosity    int
	logFile      string
	disassemble  bool
	dumpCFG      bool
	mergePrivate bool
	workers      int
	maxStackWarn int
	cachePath    string
	outDir       string
	paths        []string
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("abcasm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose verbosity
	fs.Var(&verbose, "v", "Verbose output (repeat for more)")
	dis := fs.Bool("dis", false, "Print the disassembly of each method")
	cfg := fs.Bool("cfg", false, "Print the control flow graph of each method")
	mergePrivate := fs.Bool("merge-private", false, "Merge private namespaces with the same name across units")
	workers := fs.Int("j", 0, "Number of units compiled in parallel (0 = GOMAXPROCS)")
	cachePath := fs.String("cache", "", "Snapshot cache database path")
	outDir := fs.String("o", "", "Write the CBOR snapshots of each unit to this directory")
	noManifest := fs.Bool("no-manifest", false, "Ignore abcasm.toml")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: abcasm [options] [paths...]\n\n")
		fmt.Fprintf(stderr, "Assembles .abcasm listings and prints the frame counts of every method.\n")
		fmt.Fprintf(stderr, "Without paths, the source directories of abcasm.toml are used.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  abcasm main.abcasm          # Frame counts of one listing\n")
		fmt.Fprintf(stderr, "  abcasm -dis -cfg ./src/...  # Listings and graphs, recursively\n")
		fmt.Fprintf(stderr, "  abcasm -j 4 -cache .abcasm/cache.db ./src\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts := options{
		verbosity:    int(verbose),
		disassemble:  *dis,
		dumpCFG:      *cfg,
		mergePrivate: *mergePrivate,
		workers:      *workers,
		cachePath:    *cachePath,
		outDir:       *outDir,
	}

	var m *manifest.Manifest
	if !*noManifest {
		var err error
		m, err = manifest.FindAndLoad(".")
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	if m != nil {
		applyManifest(&opts, m, set)
	}

	var logPath *string
	if opts.logFile != "" {
		logPath = &opts.logFile
	}
	commonlog.Configure(opts.verbosity, logPath)

	files, err := collectFiles(fs.Args(), m)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(files) == 0 {
		fs.Usage()
		return 2
	}
	opts.paths = files

	return compile(opts, stdout, stderr)
}

// applyManifest fills in settings the command line did not set.
func applyManifest(opts *options, m *manifest.Manifest, set map[string]bool) {
	if !set["v"] {
		opts.verbosity = m.Log.Verbosity
	}
	opts.logFile = m.LogFilePath()
	if !set["merge-private"] {
		opts.mergePrivate = m.Compile.MergePrivateNamespaces
	}
	if !set["j"] {
		opts.workers = m.Compile.Workers
	}
	opts.maxStackWarn = m.Compile.MaxStackWarning
	if !set["cache"] && m.Cache.Enabled {
		opts.cachePath = m.CachePath()
	}
}

// collectFiles expands the path arguments, or falls back to the manifest's
// source files when there are none.
func collectFiles(args []string, m *manifest.Manifest) ([]string, error) {
	if len(args) == 0 {
		if m == nil {
			return nil, nil
		}
		return m.SourceFiles()
	}
	ext := ".abcasm"
	if m != nil {
		ext = m.Source.Extension
	}
	var files []string
	for _, arg := range args {
		found, err := expandPath(arg, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func compile(opts options, stdout, stderr io.Writer) int {
	bopts := build.Options{
		Workers:                opts.workers,
		MergePrivateNamespaces: opts.mergePrivate,
		MaxStackWarning:        opts.maxStackWarn,
	}
	if opts.cachePath != "" {
		store, err := cache.Open(opts.cachePath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer store.Close()
		bopts.Cache = store
	}

	res, err := build.Compile(context.Background(), bopts, opts.paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	for _, u := range res.Units {
		for _, mr := range u.Methods {
			s := mr.Snapshot
			fmt.Fprintf(stdout, "%s %s: max_stack=%d max_scope=%d init_scope=%d locals=%d slots=%d",
				u.File, s.Name, s.MaxStack, s.MaxScope, s.InitScope, s.LocalCount, s.MaxSlots)
			if mr.Cached && opts.verbosity > 0 {
				fmt.Fprint(stdout, " (cached)")
			}
			fmt.Fprintln(stdout)
			if opts.disassemble {
				fmt.Fprint(stdout, semantics.Disassemble(mr.Method.Body.Instructions()))
			}
			if opts.dumpCFG {
				fmt.Fprint(stdout, mr.Method.Body.CFG().Dump())
			}
		}
	}

	if opts.verbosity > 0 {
		p := res.Pools
		fmt.Fprintf(stdout, "Pools: %d strings, %d namespaces, %d namespace sets, %d names\n",
			p.Strings.Len(), p.Namespaces.Len(), p.Nssets.Len(), p.Names.Len())
		if bopts.Cache != nil {
			fmt.Fprintf(stdout, "Cache: %d hits, %d misses\n", res.CacheHits, res.CacheMisses)
		}
	}

	if opts.outDir != "" {
		if err := writeSnapshots(opts.outDir, res); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	for _, r := range res.Reports {
		prefix := "Error"
		if r.Warning {
			prefix = "Warning"
		}
		fmt.Fprintf(stderr, "%s: %s\n", prefix, r)
	}
	if len(res.Diagnostics()) > 0 {
		return 1
	}
	return 0
}

// writeSnapshots writes one .snap file per unit holding the CBOR snapshots
// of its methods. Files are laid out under dir the way the listings are laid
// out under their common parent directory, so equal base names in different
// directories do not collide.
func writeSnapshots(dir string, res *build.Result) error {
	files := make([]string, len(res.Units))
	for i, u := range res.Units {
		abs, err := filepath.Abs(u.File)
		if err != nil {
			return err
		}
		files[i] = abs
	}
	root := commonDir(files)

	for i, u := range res.Units {
		snaps := make([]*wire.MethodSnapshot, len(u.Methods))
		for j, mr := range u.Methods {
			snaps[j] = mr.Snapshot
		}
		data, err := wire.MarshalUnit(snaps)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", u.File, err)
		}
		rel, err := filepath.Rel(root, files[i])
		if err != nil {
			return err
		}
		out := filepath.Join(dir, strings.TrimSuffix(rel, filepath.Ext(rel))+".snap")
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// commonDir returns the deepest directory containing every file in files.
func commonDir(files []string) string {
	if len(files) == 0 {
		return "."
	}
	dir := filepath.Dir(files[0])
	for _, f := range files[1:] {
		for !within(dir, f) {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return dir
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
