package build

// configureFlags are passed to every configure invocation: packages are
// installed as static libraries only.
var configureFlags = []string{
	"--disable-dependency-tracking",
	"--enable-shared=no",
	"--enable-static=yes",
}

// A Step is one external command of a variant build. Argv[0] is resolved in
// the package source directory if it contains a slash (e.g. ./configure),
// and in $PATH otherwise.
type Step struct {
	Kind StepKind
	Argv []string

	// OnlyIfExists names a file relative to the source directory. If set and
	// the file does not exist when the step is reached, the step is skipped.
	OnlyIfExists string
}

// Steps returns the build steps of pkg in variant v, in execution order:
// make clean (only if a Makefile from a previous build exists), configure
// and make install.
func Steps(pkg Package, v Variant) []Step {
	configure := make([]string, 0, 2+len(configureFlags)+len(v.ExtraConfigureArgs))
	configure = append(configure, "./configure", "--prefix="+v.prefix(pkg))
	configure = append(configure, configureFlags...)
	configure = append(configure, v.ExtraConfigureArgs...)

	return []Step{
		{
			Kind:         StepClean,
			Argv:         []string{"make", "clean"},
			OnlyIfExists: "Makefile",
		},
		{
			Kind: StepConfigure,
			Argv: configure,
		},
		{
			Kind: StepInstall,
			Argv: []string{"make", "install"},
		},
	}
}
