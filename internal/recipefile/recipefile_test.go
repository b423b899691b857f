package recipefile

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/distr1/recipe/internal/build"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadPackageFile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "libogg", RecipeFile)
	writeFile(t, fn, `# Ogg bitstream library, built as a static library.
name: "libogg-1.2.2"
source_dir: "src"
install_prefix: "/opt/x"
variant: "all"
`)
	got, err := ReadPackageFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	want := &Recipe{
		Package: build.Package{
			Name:          "libogg-1.2.2",
			SourceDir:     filepath.Join(dir, "libogg", "src"),
			InstallPrefix: "/opt/x",
		},
		Variants: []string{"all"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadPackageFile: diff (-want +got):\n%s", diff)
	}
}

func TestReadPackageFileDefaults(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, RecipeFile)
	writeFile(t, fn, `name: "libogg-1.2.2"`)
	got, err := ReadPackageFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "libogg-1.2.2"); got.Package.SourceDir != want {
		t.Errorf("SourceDir = %q, want %q", got.Package.SourceDir, want)
	}
	if diff := cmp.Diff([]string{SelectAll}, got.Variants); diff != "" {
		t.Errorf("Variants: diff (-want +got):\n%s", diff)
	}
}

func TestReadPackageFileAbsoluteSourceDir(t *testing.T) {
	fn := filepath.Join(t.TempDir(), RecipeFile)
	writeFile(t, fn, `name: "libogg-1.2.2"
source_dir: "/src/libogg"
variant: "amd64"
variant: "arm"
`)
	got, err := ReadPackageFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if got.Package.SourceDir != "/src/libogg" {
		t.Errorf("SourceDir = %q, want /src/libogg", got.Package.SourceDir)
	}
	if diff := cmp.Diff([]string{"amd64", "arm"}, got.Variants); diff != "" {
		t.Errorf("Variants: diff (-want +got):\n%s", diff)
	}
}

func TestReadPackageFileErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", `source_dir: "src"`, "missing name"},
		{"unknown field", "name: \"libogg-1.2.2\"\nsource: \"x\"", `unknown field "source"`},
		{"duplicate name", "name: \"a\"\nname: \"b\"", "got 2 name values"},
		{"not a string", `name: 42`, "is not a string"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			fn := filepath.Join(t.TempDir(), RecipeFile)
			writeFile(t, fn, tt.content)
			_, err := ReadPackageFile(fn)
			if err == nil {
				t.Fatalf("ReadPackageFile(%q) unexpectedly succeeded", tt.content)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadPackageFile(%q) = %v, want error containing %q", tt.content, err, tt.wantErr)
			}
		})
	}
}

const variantsTextproto = `variant {
  name: "all"
  platform { name: "amd64" prefix: "/opt/x" }
  build_env { key: "CFLAGS" value: "-O2" }
  build_env { key: "CC" value: "gcc" }
}
variant {
  name: "arm"
  platform { name: "arm" prefix: "/opt/arm" }
  configure_flag: "--host=arm"
  configure_flag: "--disable-docs"
}
`

func TestReadVariantsFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "variants.textproto")
	writeFile(t, fn, variantsTextproto)
	got, err := ReadVariantsFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	want := []build.Variant{
		{
			Name:     "all",
			Platform: build.Platform{Name: "amd64", Prefix: "/opt/x"},
			BuildEnv: map[string]string{"CFLAGS": "-O2", "CC": "gcc"},
		},
		{
			Name:               "arm",
			Platform:           build.Platform{Name: "arm", Prefix: "/opt/arm"},
			ExtraConfigureArgs: []string{"--host=arm", "--disable-docs"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadVariantsFile: diff (-want +got):\n%s", diff)
	}
}

func TestReadVariantsFileErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		content string
		wantErr string
	}{
		{"duplicate", "variant { name: \"a\" }\nvariant { name: \"a\" }", `duplicate variant "a"`},
		{"unnamed", `variant { configure_flag: "--host=arm" }`, "missing name"},
		{"unknown platform field", `variant { name: "a" platform { arch: "x" } }`, `unknown field "arch"`},
		{"env without key", `variant { name: "a" build_env { value: "x" } }`, "missing key"},
		{"top-level field", `name: "a"`, `unknown field "name"`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			fn := filepath.Join(t.TempDir(), "variants.textproto")
			writeFile(t, fn, tt.content)
			_, err := ReadVariantsFile(fn)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadVariantsFile(%q) = %v, want error containing %q", tt.content, err, tt.wantErr)
			}
		})
	}
}

func TestSelectVariants(t *testing.T) {
	all := []build.Variant{{Name: "amd64"}, {Name: "arm"}, {Name: "i686"}}
	names := func(vs []build.Variant) []string {
		var n []string
		for _, v := range vs {
			n = append(n, v.Name)
		}
		return n
	}
	for _, tt := range []struct {
		selectors []string
		want      []string
	}{
		{[]string{"all"}, []string{"amd64", "arm", "i686"}},
		{[]string{"i686", "amd64"}, []string{"amd64", "i686"}},
		{[]string{"arm", "arm"}, []string{"arm"}},
	} {
		got, err := SelectVariants(all, tt.selectors)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tt.want, names(got)); diff != "" {
			t.Errorf("SelectVariants(%v): diff (-want +got):\n%s", tt.selectors, diff)
		}
	}
	if _, err := SelectVariants(all, []string{"sparc"}); err == nil {
		t.Errorf("SelectVariants(sparc) unexpectedly succeeded")
	}
}

func TestGlob(t *testing.T) {
	pkgs := t.TempDir()
	writeFile(t, filepath.Join(pkgs, "zlib", RecipeFile), `name: "zlib-1.2.11"`)
	writeFile(t, filepath.Join(pkgs, "libogg", RecipeFile), `name: "libogg-1.2.2"`)
	if err := os.MkdirAll(filepath.Join(pkgs, "notes"), 0755); err != nil {
		t.Fatal(err)
	}
	got, err := Glob(pkgs)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(pkgs, "libogg"), filepath.Join(pkgs, "zlib")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Glob: diff (-want +got):\n%s", diff)
	}
}
