package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func usage(fset *pflag.FlagSet, name, helpText string) func() {
	return func() {
		writeUsage(os.Stderr, fset, name, helpText)
	}
}

// writeUsage prints helpText followed by the flag defaults of fset, which
// go to the output configured via fset.SetOutput.
func writeUsage(w io.Writer, fset *pflag.FlagSet, name, helpText string) {
	fmt.Fprintln(w, helpText)
	fmt.Fprintf(w, "Usage of %s:\n", name)
	fset.PrintDefaults()
}
