// Package env captures details about the recipe environment. Inspect the
// environment using `recipe env`.
package env

import (
	"os"
	"path/filepath"
)

// RecipeRoot is the root directory of the recipe tree: pkgs/ contains one
// directory per package recipe, build/ receives build logs.
var RecipeRoot = findRecipeRoot()

// Root is a recipe tree.
type Root string

// PkgsDir returns the directory containing package recipes.
func (r Root) PkgsDir() string { return filepath.Join(string(r), "pkgs") }

// VariantsFile returns the default variant definitions file.
func (r Root) VariantsFile() string { return filepath.Join(string(r), "variants.textproto") }

// LogDir returns the directory holding build logs of pkg.
func (r Root) LogDir(pkg string) string { return filepath.Join(string(r), "build", pkg) }

func findRecipeRoot() Root {
	if env := os.Getenv("RECIPEROOT"); env != "" {
		return Root(env)
	}

	return Root(os.ExpandEnv("$HOME/recipes")) // default
}
