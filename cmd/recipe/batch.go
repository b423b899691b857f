package main

import (
	"context"
	"log"

	"github.com/distr1/recipe/internal/batch"
	"github.com/distr1/recipe/internal/env"
	"github.com/spf13/pflag"
)

const batchHelp = `recipe batch [--flags] [<package>...]

Build packages of the recipe root ($RECIPEROOT/pkgs), one variant after
another. Without arguments, all packages are built.

Example:
  % recipe batch --keep-going libogg libvorbis
`

func batchcmd(ctx context.Context, args []string) error {
	fset := pflag.NewFlagSet("batch", pflag.ExitOnError)
	var (
		verbose = fset.Bool("verbose", verboseDefault(), "show build step output (default: whether stdout is a terminal)")
		keep    = fset.Bool("keep-going", false, "continue with the remaining builds after a failed build")
	)
	vf := addVariantFlags(fset)
	fset.Usage = usage(fset, "batch", batchHelp)
	fset.Parse(args)

	if *vf.variant != "" {
		log.Printf("--variant is ignored by batch, recipes select their variants")
	}
	variants, err := vf.load()
	if err != nil {
		return err
	}
	bc := &batch.Ctx{
		Log:       log.Default(),
		Root:      env.RecipeRoot,
		Variants:  variants,
		Builder:   newBuildCtx(*verbose),
		KeepGoing: *keep,
	}
	results, err := bc.Build(ctx, fset.Args())
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAILED"
		}
		log.Printf("  %-30s %-10s %-6s %v", r.Package, r.Variant, status, r.Duration)
	}
	return err
}
