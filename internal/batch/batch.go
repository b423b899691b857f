// Package batch builds many package variants one after another, as the
// orchestrator of build.Ctx.RunVariant.
package batch

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/distr1/recipe/internal/build"
	"github.com/distr1/recipe/internal/buildlog"
	"github.com/distr1/recipe/internal/env"
	"github.com/distr1/recipe/internal/recipefile"
	"golang.org/x/xerrors"
)

// Job is the build of one package in one variant.
type Job struct {
	Package build.Package
	Variant build.Variant
}

// Result is the outcome of a Job.
type Result struct {
	Package  string
	Variant  string
	Duration time.Duration
	Err      error // nil if the build succeeded
}

// Ctx is a batch build context, containing configuration and state.
type Ctx struct {
	// Configuration
	Log      *log.Logger
	Root     env.Root
	Variants []build.Variant
	Builder  *build.Ctx

	// KeepGoing continues with the remaining jobs after a failed build
	// instead of halting.
	KeepGoing bool
}

// Plan reads the recipes of pkgs (directory names below the pkgs directory,
// or all recipes if pkgs is empty) and returns one job per package and
// selected variant. Any malformed recipe or a job without installation
// prefix fails the plan, before anything is built.
func (c *Ctx) Plan(pkgs []string) ([]Job, error) {
	var dirs []string
	if len(pkgs) == 0 {
		var err error
		dirs, err = recipefile.Glob(c.Root.PkgsDir())
		if err != nil {
			return nil, err
		}
	} else {
		for _, pkg := range pkgs {
			dirs = append(dirs, filepath.Join(c.Root.PkgsDir(), pkg))
		}
	}

	var jobs []Job
	for _, dir := range dirs {
		r, err := recipefile.ReadPackageFile(filepath.Join(dir, recipefile.RecipeFile))
		if err != nil {
			return nil, err
		}
		variants, err := recipefile.SelectVariants(c.Variants, r.Variants)
		if err != nil {
			return nil, xerrors.Errorf("%s: %w", r.Package.Name, err)
		}
		for _, v := range variants {
			if err := build.CheckPrefix(r.Package, v); err != nil {
				return nil, err
			}
			jobs = append(jobs, Job{Package: r.Package, Variant: v})
		}
	}
	return jobs, nil
}

// Build plans and runs the builds of pkgs.
func (c *Ctx) Build(ctx context.Context, pkgs []string) ([]Result, error) {
	jobs, err := c.Plan(pkgs)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, jobs)
}

// Run builds jobs in order, each with its own build log. Unless KeepGoing
// is set, the first failure stops the batch and is returned unchanged.
// Otherwise, all failures are returned joined.
func (c *Ctx) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	c.Log.Printf("recipe root %q, %d builds", c.Root, len(jobs))
	var (
		results []Result
		failed  []error
	)
	for idx, job := range jobs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		c.Log.Printf("[%d/%d] %s (variant %s)", idx+1, len(jobs), job.Package.Name, job.Variant.Name)
		res := c.run1(ctx, job)
		results = append(results, res)
		if res.Err == nil {
			continue
		}
		c.Log.Printf("build of %s (variant %s) failed: %v", res.Package, res.Variant, res.Err)
		if !c.KeepGoing {
			return results, res.Err
		}
		failed = append(failed, res.Err)
	}
	c.Log.Printf("built %d of %d variants successfully", len(results)-len(failed), len(jobs))
	return results, errors.Join(failed...)
}

func (c *Ctx) run1(ctx context.Context, job Job) (res Result) {
	res = Result{
		Package: job.Package.Name,
		Variant: job.Variant.Name,
	}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	l, err := buildlog.Create(c.Root.LogDir(job.Package.Name), job.Package.Name, job.Variant.Name)
	if err != nil {
		res.Err = err
		return res
	}
	res.Err = c.Builder.RunVariant(ctx, job.Package, job.Variant, l)
	if err := l.Finish(res.Err); err != nil && res.Err == nil {
		res.Err = xerrors.Errorf("build log: %w", err)
	}
	return res
}
