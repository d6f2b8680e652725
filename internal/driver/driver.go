// Package driver discovers *.gleamir.json documents under a project root,
// runs the codegen emitter over each one with bounded concurrency, and
// writes the resulting Nix source next to a cached copy keyed by input
// content hash. Modules are compiled in parallel with no coordination
// between them: nothing about lowering one module's IR depends on another,
// so the driver never needs a dependency graph, only a worklist.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"glistix-nix/internal/codegen"
	"glistix-nix/internal/config"
	"glistix-nix/internal/diag"
	"glistix-nix/internal/gleamir"
	"glistix-nix/internal/nixdoc"
	"glistix-nix/internal/prelude"
)

// Report describes the outcome of building one module.
type Report struct {
	Module    string
	OutPath   string
	CacheHit  bool
	Diagnostics []*diag.Diagnostic
	Err       error
}

// Result summarizes one full driver run.
type Result struct {
	Reports    []Report
	CacheHits  int
	Compiled   int
	PreludeOut string
}

// Options controls one driver run, layering over a loaded config.Config.
type Options struct {
	Root   string // project root to search for *.gleamir.json
	Config config.Config
	Quiet  bool // suppress the per-module colourized report line
}

// Run discovers and builds every module under opt.Root. A non-nil error is
// only returned for a driver-level failure (I/O, discovery); individual
// module failures are reported through Result.Reports so a partial build
// can still report which modules did succeed.
func Run(ctx context.Context, opt Options) (*Result, error) {
	modules, err := discoverModules(opt.Root)
	if err != nil {
		return nil, diag.Wrap("", diag.CodeDiscoverFailure, err)
	}

	outRoot := filepath.Join(opt.Root, opt.Config.OutRoot)
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return nil, diag.Wrap("", diag.CodeWriteFailure, err)
	}

	preludeOut, err := materializePrelude(outRoot, opt.Config.PreludePath)
	if err != nil {
		return nil, diag.Wrap("", diag.CodeWriteFailure, err)
	}

	cache, err := OpenCache(opt.Config.CacheDir)
	if err != nil {
		// A cache that cannot be opened degrades to "no cache" rather than
		// failing the build: caching is an optimization, not a
		// correctness requirement.
		cache = nil
	}

	jobs := opt.Config.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	reports := make([]Report, len(modules))
	var mu sync.Mutex // guards only terminal reporting, not the reports slice

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(modules), 1)))

	for i, path := range modules {
		g.Go(func(i int, path string) func() error {
			return func() error {
				defer func() {
					// A panic while building one module fails that module
					// only; sibling modules keep building.
					if r := recover(); r != nil {
						reports[i] = Report{Module: path, Err: diag.Errorf(path, diag.CodeMalformedIR, "internal error: %v", r)}
					}
				}()
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				rep := buildOne(path, outRoot, opt.Config.LineWidth, cache)
				reports[i] = rep
				if !opt.Quiet {
					mu.Lock()
					printReport(rep)
					mu.Unlock()
				}
				return nil
			}
		}(i, path))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Reports: reports, PreludeOut: preludeOut}
	for _, r := range reports {
		if r.CacheHit {
			res.CacheHits++
		} else if r.Err == nil {
			res.Compiled++
		}
	}
	return res, nil
}

func buildOne(path, outRoot string, lineWidth int, cache *Cache) Report {
	rep := Report{Module: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		rep.Err = diag.Wrap(path, diag.CodeReadFailure, err)
		return rep
	}

	// The emitted text depends on the line width as well as the IR, so both
	// go into the cache key.
	key := hashBytes(append([]byte(fmt.Sprintf("line_width=%d\n", lineWidth)), raw...))
	if cache != nil {
		if cached, ok, _ := cache.Get(key); ok {
			mod, derr := gleamir.DecodeModule(raw)
			if derr == nil {
				out := outputPathFor(outRoot, mod.Name)
				if writeErr := os.WriteFile(out, cached, 0o644); writeErr == nil {
					rep.OutPath = out
					rep.CacheHit = true
					rep.Module = mod.Name
					return rep
				}
			}
		}
	}

	mod, derr := gleamir.DecodeModule(raw)
	if derr != nil {
		rep.Err = diag.Wrap(path, diag.CodeMalformedIR, derr)
		return rep
	}
	rep.Module = mod.Name

	src, bag, err := codegen.EmitModule(mod, codegen.Options{Writer: nixdoc.Options{LineWidth: lineWidth}})
	rep.Diagnostics = bag.Entries()
	if err != nil {
		rep.Err = err
		return rep
	}

	out := outputPathFor(outRoot, mod.Name)
	if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
		rep.Err = diag.Wrap(mod.Name, diag.CodeWriteFailure, err)
		return rep
	}
	rep.OutPath = out

	if cache != nil {
		_ = cache.Put(key, []byte(src))
	}
	return rep
}

func printReport(r Report) {
	if r.Err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "FAIL")
		fmt.Fprintf(os.Stderr, " %s: %v\n", r.Module, r.Err)
		return
	}
	if r.CacheHit {
		color.New(color.FgCyan).Fprintf(os.Stdout, "CACHED")
	} else {
		color.New(color.FgGreen, color.Bold).Fprintf(os.Stdout, "OK")
	}
	fmt.Fprintf(os.Stdout, " %s -> %s\n", r.Module, r.OutPath)
}

// materializePrelude writes the runtime prelude to outRoot/preludePath
// exactly once per output root: if a file with matching content already
// sits there, it is left untouched.
func materializePrelude(outRoot, preludePath string) (string, error) {
	target := filepath.Join(outRoot, preludePath)
	src := prelude.Source()
	if existing, err := os.ReadFile(target); err == nil && string(existing) == src {
		return target, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, []byte(src), 0o644); err != nil {
		return "", err
	}
	return target, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
