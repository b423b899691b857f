package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/distr1/recipe/internal/build"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
)

const stepsHelp = `recipe steps [--flags]

Print the build steps of a package as shell commands, without running them.

Example:
  % recipe steps --pkg=pkgs/libogg --cross=arm64
`

func printSteps(w io.Writer, pkg build.Package, v build.Variant) {
	fmt.Fprintf(w, "# %s (variant %s)\n", pkg.Name, v.Name)
	fmt.Fprintf(w, "cd %s\n", shellquote.Join(pkg.SourceDir))
	keys := make([]string, 0, len(v.BuildEnv))
	for k := range v.BuildEnv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "export %s=%s\n", k, shellquote.Join(v.BuildEnv[k]))
	}
	for _, step := range build.Steps(pkg, v) {
		line := shellquote.Join(step.Argv...)
		if step.OnlyIfExists != "" {
			line = "test -e " + shellquote.Join(step.OnlyIfExists) + " && " + line
		}
		fmt.Fprintln(w, line)
	}
}

func steps(ctx context.Context, args []string) error {
	fset := pflag.NewFlagSet("steps", pflag.ExitOnError)
	pkg := fset.String("pkg", ".", "recipe directory or build.textproto file")
	vf := addVariantFlags(fset)
	fset.Usage = usage(fset, "steps", stepsHelp)
	fset.Parse(args)

	pkgs, variants, err := vf.jobsFor(*pkg)
	if err != nil {
		return err
	}
	for i := range pkgs {
		if i > 0 {
			fmt.Println()
		}
		printSteps(os.Stdout, pkgs[i], variants[i])
	}
	return nil
}
