package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/distr1/recipe"
	"github.com/distr1/recipe/internal/trace"
	"github.com/spf13/pflag"
)

var tracefile = pflag.String("tracefile", "", "path to store a Chrome trace of all build steps at")

type cmd struct {
	helpText string
	fn       func(ctx context.Context, args []string) error
}

var verbs = map[string]cmd{
	"build": {buildHelp, buildcmd},
	"batch": {batchHelp, batchcmd},
	"steps": {stepsHelp, steps},
	"log":   {logHelp, showlog},
	"env":   {envHelp, printenv},
}

func main() {
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if *tracefile != "" {
		c, err := trace.Enable(*tracefile)
		if err != nil {
			log.Fatal(err)
		}
		recipe.RegisterAtExit(c.Close)
	}

	args := pflag.Args()
	verb := "build"
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	if verb == "help" {
		if len(args) != 1 {
			fmt.Fprintf(os.Stderr, "syntax: recipe help <verb>\n")
			fmt.Fprintf(os.Stderr, "\n")
			fmt.Fprintf(os.Stderr, "Verbs:\n")
			fmt.Fprintf(os.Stderr, "\tbuild - build one package\n")
			fmt.Fprintf(os.Stderr, "\tbatch - build all packages of the recipe root\n")
			fmt.Fprintf(os.Stderr, "\tsteps - print the build steps of a package\n")
			fmt.Fprintf(os.Stderr, "\tlog   - show a package build log\n")
			fmt.Fprintf(os.Stderr, "\tenv   - print the recipe environment\n")
			os.Exit(2)
		}
		verb = args[0]
		args = []string{"--help"}
	}
	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: recipe <command> [options]\n")
		os.Exit(2)
	}

	ctx, canc := recipe.InterruptibleContext()
	err := v.fn(ctx, args)
	canc()
	if atErr := recipe.RunAtExit(); atErr != nil {
		log.Printf("cleanup: %v", atErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %+v\n", verb, err)
		os.Exit(1)
	}
}
