package main

import (
	"context"
	"log"
	"os"

	"github.com/distr1/recipe/internal/batch"
	"github.com/distr1/recipe/internal/build"
	"github.com/distr1/recipe/internal/env"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

const buildHelp = `recipe build [--flags]

Build a package: make clean (if a Makefile exists), configure and make
install, in each variant of the package.

Example:
  % recipe build --pkg=pkgs/libogg --prefix=/opt/x --configure-flags=--host=arm
`

// newBuildCtx returns a build context which shows step output on the
// terminal if verbose is set. Output always goes to the build log.
func newBuildCtx(verbose bool) *build.Ctx {
	b := build.NewCtx()
	if !verbose {
		b.Stdout = nil
		b.Stderr = nil
	}
	return b
}

func verboseDefault() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func buildcmd(ctx context.Context, args []string) error {
	fset := pflag.NewFlagSet("build", pflag.ExitOnError)
	var (
		pkg     = fset.String("pkg", ".", "recipe directory or build.textproto file")
		verbose = fset.Bool("verbose", verboseDefault(), "show build step output (default: whether stdout is a terminal)")
		keep    = fset.Bool("keep-going", false, "continue with the remaining variants after a failed build")
	)
	vf := addVariantFlags(fset)
	fset.Usage = usage(fset, "build", buildHelp)
	fset.Parse(args)

	pkgs, variants, err := vf.jobsFor(*pkg)
	if err != nil {
		return err
	}
	jobs := make([]batch.Job, len(pkgs))
	for i := range pkgs {
		jobs[i] = batch.Job{Package: pkgs[i], Variant: variants[i]}
	}
	bc := &batch.Ctx{
		Log:       log.Default(),
		Root:      env.RecipeRoot,
		Variants:  variants,
		Builder:   newBuildCtx(*verbose),
		KeepGoing: *keep,
	}
	_, err = bc.Run(ctx, jobs)
	return err
}
