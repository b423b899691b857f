package main

import (
	"context"
	"os"
	"syscall"

	"github.com/distr1/recipe/internal/buildlog"
	"github.com/distr1/recipe/internal/env"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
)

const logHelp = `recipe log [--flags] <package>

Show a package build log.

Example:
  % recipe log libogg-1.2.2
`

func showlog(ctx context.Context, args []string) error {
	fset := pflag.NewFlagSet("log", pflag.ExitOnError)
	variant := fset.String("variant", "", "variant to display the build log of (default: most recent build)")
	fset.Usage = usage(fset, "log", logHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.Errorf("syntax: log <package>")
	}
	dir := env.RecipeRoot.LogDir(fset.Arg(0))

	var match string
	if *variant != "" {
		match = buildlog.Path(dir, *variant)
	} else {
		var err error
		match, err = buildlog.Latest(dir)
		if err != nil {
			return err
		}
	}

	return syscall.Exec("/bin/sh", pagerCommand(match), os.Environ())
}

// pagerCommand returns the argv displaying path in $PAGER (default less).
func pagerCommand(path string) []string {
	return []string{
		"/bin/sh",
		"-c",
		"${PAGER:-less} " + shellquote.Join(path),
	}
}
