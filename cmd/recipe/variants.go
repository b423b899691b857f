package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/distr1/recipe"
	"github.com/distr1/recipe/internal/build"
	"github.com/distr1/recipe/internal/env"
	"github.com/distr1/recipe/internal/recipefile"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
)

// variantFlags configure the variants a package is built in.
type variantFlags struct {
	root env.Root

	variant        *string
	variantsFile   *string
	prefix         *string
	configureFlags *string
	buildEnv       *[]string
	cross          *string
}

func addVariantFlags(fset *pflag.FlagSet) *variantFlags {
	return &variantFlags{
		root:           env.RecipeRoot,
		variant:        fset.String("variant", "", "build only this variant (default: all variants of the recipe)"),
		variantsFile:   fset.String("variants", "", "variant definitions file (default: $RECIPEROOT/variants.textproto, if present)"),
		prefix:         fset.String("prefix", "", "installation prefix, overriding the platform prefix of all variants"),
		configureFlags: fset.String("configure-flags", "", "extra configure flags for all variants, split like a shell would (e.g. \"--host=arm 'CFLAGS=-O2 -g'\")"),
		buildEnv:       fset.StringArray("env", nil, "KEY=value environment override for all variants (repeatable)"),
		cross:          fset.String("cross", "", "platform to cross-compile for (e.g. arm64), adds --host=<triplet>"),
	}
}

// load returns the variants to build. Without a variants file, a single
// variant named all targets the native platform.
func (vf *variantFlags) load() ([]build.Variant, error) {
	fn := *vf.variantsFile
	if fn == "" {
		if _, err := os.Stat(vf.root.VariantsFile()); err == nil {
			fn = vf.root.VariantsFile()
		}
	}
	var variants []build.Variant
	if fn != "" {
		var err error
		variants, err = recipefile.ReadVariantsFile(fn)
		if err != nil {
			return nil, err
		}
	} else {
		variants = []build.Variant{{
			Name:     recipefile.SelectAll,
			Platform: build.Platform{Name: runtime.GOARCH},
		}}
	}

	extra, err := shellquote.Split(*vf.configureFlags)
	if err != nil {
		return nil, xerrors.Errorf("--configure-flags: %w", err)
	}
	if *vf.cross != "" {
		triplet, ok := recipe.HostTriplet(*vf.cross)
		if !ok {
			return nil, xerrors.Errorf("--cross: unknown platform %q", *vf.cross)
		}
		extra = append([]string{"--host=" + triplet}, extra...)
	}
	overrides := make(map[string]string)
	for _, kv := range *vf.buildEnv {
		idx := strings.IndexByte(kv, '=')
		if idx < 1 {
			return nil, xerrors.Errorf("--env: %q is not of the form KEY=value", kv)
		}
		overrides[kv[:idx]] = kv[idx+1:]
	}

	for i, v := range variants {
		if *vf.prefix != "" {
			v.Platform.Prefix = *vf.prefix
		}
		if *vf.cross != "" {
			v.Platform.Name = *vf.cross
		}
		if len(extra) > 0 {
			v.ExtraConfigureArgs = append(append([]string(nil), v.ExtraConfigureArgs...), extra...)
		}
		if len(overrides) > 0 {
			merged := make(map[string]string, len(v.BuildEnv)+len(overrides))
			for k, val := range v.BuildEnv {
				merged[k] = val
			}
			for k, val := range overrides {
				merged[k] = val
			}
			v.BuildEnv = merged
		}
		variants[i] = v
	}
	return variants, nil
}

// jobsFor returns the builds of the recipe at path (a recipe directory or
// file) in the variants selected by the recipe and the --variant flag.
func (vf *variantFlags) jobsFor(path string) ([]build.Package, []build.Variant, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, recipefile.RecipeFile)
	}
	r, err := recipefile.ReadPackageFile(path)
	if err != nil {
		return nil, nil, err
	}
	all, err := vf.load()
	if err != nil {
		return nil, nil, err
	}
	selectors := r.Variants
	if *vf.variant != "" {
		selectors = []string{*vf.variant}
	}
	variants, err := recipefile.SelectVariants(all, selectors)
	if err != nil {
		return nil, nil, xerrors.Errorf("%s: %w", r.Package.Name, err)
	}
	pkgs := make([]build.Package, len(variants))
	for i := range pkgs {
		if err := build.CheckPrefix(r.Package, variants[i]); err != nil {
			return nil, nil, err
		}
		pkgs[i] = r.Package
	}
	return pkgs, variants, nil
}
