package main

import (
	"context"
	"fmt"

	"github.com/distr1/recipe/internal/env"
	"github.com/spf13/pflag"
)

const envHelp = `recipe env

Print the recipe environment.
`

func printenv(ctx context.Context, args []string) error {
	fset := pflag.NewFlagSet("env", pflag.ExitOnError)
	fset.Usage = usage(fset, "env", envHelp)
	fset.Parse(args)

	fmt.Printf("RECIPEROOT=%s\n", env.RecipeRoot)
	fmt.Printf("pkgs: %s\n", env.RecipeRoot.PkgsDir())
	fmt.Printf("variants: %s\n", env.RecipeRoot.VariantsFile())
	return nil
}
