// Package build drives the assembler over a set of listing files and
// computes frame counts for every method body.
//
// Files are independent compilation units and are processed concurrently.
// The methods of one unit are processed in order on a single goroutine, so
// a method body is never shared between goroutines.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/abcasm/abc/semantics"
	"github.com/chazu/abcasm/abc/wire"
	"github.com/chazu/abcasm/asm"
	"github.com/chazu/abcasm/cache"
)

var log = commonlog.GetLogger("abcasm.build")

// Options configures Compile.
type Options struct {
	// Workers bounds the number of units compiled at once. Zero means
	// GOMAXPROCS.
	Workers int

	// MergePrivateNamespaces applies to the session constant pools.
	MergePrivateNamespaces bool

	// MaxStackWarning reports a warning for methods whose operand stack
	// exceeds it. Zero disables the check.
	MaxStackWarning int

	// Cache, when set, supplies snapshots of unchanged methods and stores
	// newly computed ones.
	Cache *cache.Store
}

// Result is the outcome of a Compile call.
type Result struct {
	Units   []*UnitResult // in the order of the paths argument
	Reports []Report      // sorted by file, then method line
	Pools   *semantics.ConstantPools

	CacheHits   int
	CacheMisses int
}

// UnitResult is one compiled listing file.
type UnitResult struct {
	File    string
	Unit    *asm.Unit
	Methods []*MethodResult
}

// MethodResult is one compiled method.
type MethodResult struct {
	Method   *asm.Method
	Snapshot *wire.MethodSnapshot
	Cached   bool // Snapshot came from the cache
}

// Report is a diagnostic or warning attached to a method.
type Report struct {
	File    string
	Method  string
	Line    int // line of the method's .method directive
	Message string
	Warning bool
}

func (r Report) String() string {
	return fmt.Sprintf("%s:%d: %s", r.File, r.Line, r.Message)
}

// Methods returns every compiled method in unit order.
func (r *Result) Methods() []*MethodResult {
	var out []*MethodResult
	for _, u := range r.Units {
		out = append(out, u.Methods...)
	}
	return out
}

// Diagnostics returns the reports that are not warnings.
func (r *Result) Diagnostics() []Report {
	var out []Report
	for _, rep := range r.Reports {
		if !rep.Warning {
			out = append(out, rep)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Report collector
// ---------------------------------------------------------------------------

// collector gathers reports from concurrent units.
type collector struct {
	mu      sync.Mutex
	reports []Report
	hits    int
	misses  int
}

func (c *collector) add(r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

func (c *collector) count(cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached {
		c.hits++
	} else {
		c.misses++
	}
}

func (c *collector) sorted() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// ---------------------------------------------------------------------------
// Compile
// ---------------------------------------------------------------------------

// Compile assembles each file in paths as a unit and computes the frame
// counts of its methods. It stops at the first unit that cannot be read or
// parsed, and stops scheduling units once ctx is done.
func Compile(ctx context.Context, opts Options, paths []string) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	col := &collector{}
	units := make([]*UnitResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := compileFile(gctx, opts, path, col)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Units:       units,
		Reports:     col.sorted(),
		Pools:       semantics.NewConstantPools(opts.MergePrivateNamespaces),
		CacheHits:   col.hits,
		CacheMisses: col.misses,
	}
	// Pool indices follow path and method order, so they are reproducible.
	for _, u := range units {
		for _, m := range u.Methods {
			res.Pools.CollectInstructions(m.Method.Body.Instructions().Instructions())
		}
	}

	log.Infof("compiled %d units, %d methods (%d from cache)", len(units), res.CacheHits+res.CacheMisses, res.CacheHits)
	return res, nil
}

func compileFile(ctx context.Context, opts Options, path string, col *collector) (*UnitResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	unit, err := asm.Parse(path, string(data))
	if err != nil {
		return nil, err
	}

	ur := &UnitResult{File: path, Unit: unit}
	for _, m := range unit.Methods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mr := compileMethod(opts, m)
		col.count(mr.Cached)
		ur.Methods = append(ur.Methods, mr)

		for _, d := range mr.Snapshot.Diagnostics {
			col.add(Report{File: path, Method: m.Name, Line: m.Line, Message: d})
		}
		if limit := opts.MaxStackWarning; limit > 0 && mr.Snapshot.MaxStack > limit {
			col.add(Report{
				File:    path,
				Method:  m.Name,
				Line:    m.Line,
				Message: fmt.Sprintf("%s: max stack %d exceeds %d", m.Name, mr.Snapshot.MaxStack, limit),
				Warning: true,
			})
		}
	}
	log.Debugf("%s: %d methods", path, len(ur.Methods))
	return ur, nil
}

func compileMethod(opts Options, m *asm.Method) *MethodResult {
	var key string
	if opts.Cache != nil {
		key = cache.Key(m.Source)
		snap, err := opts.Cache.Get(key)
		switch {
		case err == nil:
			log.Debugf("%s: cache hit", m.Name)
			return &MethodResult{Method: m, Snapshot: snap, Cached: true}
		case !errors.Is(err, cache.ErrNotFound):
			log.Warningf("%s: cache lookup failed: %s", m.Name, err)
		}
	}

	var diags semantics.DiagnosticList
	m.Body.ComputeFrameCounts(&diags)
	snap := wire.Snapshot(m.Body)
	snap.AddDiagnostics(diags.Items)
	log.Debugf("%s: max_stack=%d max_scope=%d locals=%d slots=%d",
		m.Name, snap.MaxStack, snap.MaxScope, snap.LocalCount, snap.MaxSlots)

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, snap); err != nil {
			log.Warningf("%s: cache store failed: %s", m.Name, err)
		}
	}
	return &MethodResult{Method: m, Snapshot: snap}
}
