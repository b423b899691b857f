// Package recipefile reads package recipes (build.textproto) and variant
// definitions (variants.textproto), both in protobuf text format.
package recipefile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/distr1/recipe"
	"github.com/distr1/recipe/internal/build"
	"github.com/protocolbuffers/txtpbfmt/ast"
	"github.com/protocolbuffers/txtpbfmt/parser"
	"golang.org/x/xerrors"
)

// RecipeFile is the file name of a package recipe within its directory.
const RecipeFile = "build.textproto"

// SelectAll selects every variant.
const SelectAll = "all"

// Recipe is a parsed build.textproto.
type Recipe struct {
	Package build.Package

	// Variants lists the variant selectors of the package, e.g. [all].
	Variants []string
}

var bufPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

func parseFile(path string) ([]*ast.Node, error) {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	defer bufPool.Put(b)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := io.Copy(b, f); err != nil {
		return nil, err
	}
	nodes, err := parser.Parse(b.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return nodes, nil
}

// stringValues returns the unquoted string values of all nodes.
func stringValues(nodes []*ast.Node) ([]string, error) {
	var vals []string
	for _, n := range nodes {
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("%s: got message, want string", n.Name)
		}
		for _, v := range n.Values {
			s, err := strconv.Unquote(v.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %s is not a string: %v", n.Name, v.Value, err)
			}
			vals = append(vals, s)
		}
	}
	return vals, nil
}

// optionalString returns the single string value of field, or "" if field is
// not present.
func optionalString(nodes []*ast.Node, field string) (string, error) {
	vals, err := stringValues(ast.GetFromPath(nodes, []string{field}))
	if err != nil {
		return "", err
	}
	if got := len(vals); got > 1 {
		return "", fmt.Errorf("got %d %s values, want at most 1", got, field)
	}
	if len(vals) == 0 {
		return "", nil
	}
	return vals[0], nil
}

func requiredString(nodes []*ast.Node, field string) (string, error) {
	val, err := optionalString(nodes, field)
	if err != nil {
		return "", err
	}
	if val == "" {
		return "", fmt.Errorf("missing %s", field)
	}
	return val, nil
}

func checkFields(nodes []*ast.Node, known ...string) error {
	for _, n := range nodes {
		if n.Name == "" {
			continue // trailing comments
		}
		ok := false
		for _, k := range known {
			if n.Name == k {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unknown field %q", n.Name)
		}
	}
	return nil
}

// ReadPackageFile reads the recipe at path. A relative source_dir is resolved
// against the directory containing path and defaults to the package name.
func ReadPackageFile(path string) (*Recipe, error) {
	nodes, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	r, err := packageFromNodes(nodes, filepath.Dir(path))
	if err != nil {
		return nil, xerrors.Errorf("malformed recipe %s: %w", path, err)
	}
	return r, nil
}

func packageFromNodes(nodes []*ast.Node, dir string) (*Recipe, error) {
	if err := checkFields(nodes, "name", "source_dir", "install_prefix", "variant"); err != nil {
		return nil, err
	}
	name, err := requiredString(nodes, "name")
	if err != nil {
		return nil, err
	}
	if pn := recipe.ParseName(name); pn.Pkg == "" {
		return nil, fmt.Errorf("invalid package name %q", name)
	}
	sourceDir, err := optionalString(nodes, "source_dir")
	if err != nil {
		return nil, err
	}
	if sourceDir == "" {
		sourceDir = name
	}
	if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(dir, sourceDir)
	}
	prefix, err := optionalString(nodes, "install_prefix")
	if err != nil {
		return nil, err
	}
	variants, err := stringValues(ast.GetFromPath(nodes, []string{"variant"}))
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		variants = []string{SelectAll}
	}
	return &Recipe{
		Package: build.Package{
			Name:          name,
			SourceDir:     sourceDir,
			InstallPrefix: prefix,
		},
		Variants: variants,
	}, nil
}

// ReadVariantsFile reads the variant definitions at path.
func ReadVariantsFile(path string) ([]build.Variant, error) {
	nodes, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	variants, err := variantsFromNodes(nodes)
	if err != nil {
		return nil, xerrors.Errorf("malformed variants file %s: %w", path, err)
	}
	return variants, nil
}

func variantsFromNodes(nodes []*ast.Node) ([]build.Variant, error) {
	if err := checkFields(nodes, "variant"); err != nil {
		return nil, err
	}
	var variants []build.Variant
	seen := make(map[string]bool)
	for idx, n := range nodes {
		if n.Name == "" {
			continue
		}
		v, err := variantFromNodes(n.Children)
		if err != nil {
			return nil, fmt.Errorf("variant #%d: %v", idx+1, err)
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("duplicate variant %q", v.Name)
		}
		seen[v.Name] = true
		variants = append(variants, v)
	}
	return variants, nil
}

func variantFromNodes(nodes []*ast.Node) (build.Variant, error) {
	var v build.Variant
	if err := checkFields(nodes, "name", "platform", "build_env", "configure_flag"); err != nil {
		return v, err
	}
	var err error
	if v.Name, err = requiredString(nodes, "name"); err != nil {
		return v, err
	}

	platforms := ast.GetFromPath(nodes, []string{"platform"})
	if got := len(platforms); got > 1 {
		return v, fmt.Errorf("%s: got %d platform messages, want at most 1", v.Name, got)
	}
	if len(platforms) == 1 {
		p := platforms[0].Children
		if err := checkFields(p, "name", "prefix"); err != nil {
			return v, fmt.Errorf("%s: platform: %v", v.Name, err)
		}
		if v.Platform.Name, err = optionalString(p, "name"); err != nil {
			return v, fmt.Errorf("%s: platform: %v", v.Name, err)
		}
		if v.Platform.Prefix, err = optionalString(p, "prefix"); err != nil {
			return v, fmt.Errorf("%s: platform: %v", v.Name, err)
		}
	}

	for _, kv := range ast.GetFromPath(nodes, []string{"build_env"}) {
		if err := checkFields(kv.Children, "key", "value"); err != nil {
			return v, fmt.Errorf("%s: build_env: %v", v.Name, err)
		}
		key, err := requiredString(kv.Children, "key")
		if err != nil {
			return v, fmt.Errorf("%s: build_env: %v", v.Name, err)
		}
		value, err := optionalString(kv.Children, "value")
		if err != nil {
			return v, fmt.Errorf("%s: build_env %s: %v", v.Name, key, err)
		}
		if v.BuildEnv == nil {
			v.BuildEnv = make(map[string]string)
		}
		v.BuildEnv[key] = value
	}

	if v.ExtraConfigureArgs, err = stringValues(ast.GetFromPath(nodes, []string{"configure_flag"})); err != nil {
		return v, fmt.Errorf("%s: %v", v.Name, err)
	}
	return v, nil
}

// SelectVariants returns the variants matching selectors, in definition
// order. SelectAll matches every variant; other selectors match by name.
func SelectVariants(all []build.Variant, selectors []string) ([]build.Variant, error) {
	byName := make(map[string]bool, len(all))
	for _, v := range all {
		byName[v.Name] = true
	}
	want := make(map[string]bool)
	for _, sel := range selectors {
		if sel == SelectAll {
			return all, nil
		}
		if !byName[sel] {
			return nil, xerrors.Errorf("unknown variant %q", sel)
		}
		want[sel] = true
	}
	var selected []build.Variant
	for _, v := range all {
		if want[v.Name] {
			selected = append(selected, v)
		}
	}
	return selected, nil
}

// Glob returns the directories below pkgsDir which contain a recipe, sorted.
func Glob(pkgsDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(pkgsDir, "*", RecipeFile))
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		dirs = append(dirs, filepath.Dir(m))
	}
	sort.Strings(dirs)
	return dirs, nil
}
