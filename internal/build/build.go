// Package build runs the configure/make steps which build one package
// variant from source.
package build

import (
	"context"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/distr1/recipe/internal/trace"
)

// Package describes a buildable package. It does not change once loaded.
type Package struct {
	Name          string // e.g. libogg-1.2.2
	SourceDir     string // e.g. /home/michael/recipes/pkgs/libogg-1.2.2/src
	InstallPrefix string // e.g. /opt/x
}

// Platform is the platform a variant targets.
type Platform struct {
	Name   string // e.g. amd64
	Prefix string // e.g. /opt/x, passed to configure as --prefix
}

// Variant is a platform/configuration combination under which a package is
// built. Variants are supplied by the caller, not by the package.
type Variant struct {
	Name     string // e.g. all
	Platform Platform

	// BuildEnv augments the environment of all build steps.
	BuildEnv map[string]string

	// ExtraConfigureArgs are appended, in order, to the configure
	// invocation.
	ExtraConfigureArgs []string
}

// prefix returns the installation prefix of pkg in v: the platform prefix,
// falling back to the package's own prefix.
func (v Variant) prefix(pkg Package) string {
	if v.Platform.Prefix != "" {
		return v.Platform.Prefix
	}
	return pkg.InstallPrefix
}

// Ctx is a build context: it contains the collaborators of variant builds.
// A Ctx holds no per-build state and may be used by concurrent builds.
type Ctx struct {
	Exec Execer

	// FileExists reports whether path exists. Defaults to an os.Stat check.
	FileExists func(path string) bool

	Log *log.Logger

	// Stdout and Stderr receive the output of build steps in addition to
	// the build log. May be nil.
	Stdout io.Writer
	Stderr io.Writer

	// OnState, if non-nil, is called on every state transition of a build.
	OnState func(pkg Package, v Variant, s State)
}

// NewCtx returns a Ctx which runs build steps as child processes and shows
// their output on the terminal.
func NewCtx() *Ctx {
	return &Ctx{
		Exec:       &ProcessExecer{},
		FileExists: fileExists,
		Log:        log.Default(),
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// fileExists treats any error other than “not found” as existence, so that
// e.g. an unreadable Makefile surfaces as a failing make clean.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func (b *Ctx) logf(format string, v ...interface{}) {
	if b.Log != nil {
		b.Log.Printf(format, v...)
	}
}

func (b *Ctx) setState(pkg Package, v Variant, s State) {
	if b.OnState != nil {
		b.OnState(pkg, v, s)
	}
}

func (b *Ctx) exists(path string) bool {
	if b.FileExists != nil {
		return b.FileExists(path)
	}
	return fileExists(path)
}

func (b *Ctx) execer() Execer {
	if b.Exec != nil {
		return b.Exec
	}
	return &ProcessExecer{}
}

func teeTo(console, buildLog io.Writer) io.Writer {
	if console == nil {
		return buildLog
	}
	return io.MultiWriter(console, buildLog)
}

// RunVariant builds pkg in variant v by running Steps(pkg, v) in
// pkg.SourceDir, with the environment augmented by v.BuildEnv. Step output
// is copied to buildLog, which may be nil.
//
// The first failing step aborts the build with a *CommandFailedError. A
// variant without installation prefix fails before any step runs.
func (b *Ctx) RunVariant(ctx context.Context, pkg Package, v Variant, buildLog io.Writer) error {
	if err := CheckPrefix(pkg, v); err != nil {
		return err
	}
	if buildLog == nil {
		buildLog = ioutil.Discard
	}
	b.setState(pkg, v, StateIdle)
	b.logf("building %s (variant %s) in %s", pkg.Name, v.Name, pkg.SourceDir)
	if len(v.BuildEnv) > 0 {
		b.logf("build environment overrides: %s", formatEnv(v.BuildEnv))
	}

	steps := Steps(pkg, v)
	type timing struct {
		step Step
		dur  time.Duration
	}
	var times []timing
	for idx, step := range steps {
		if fn := step.OnlyIfExists; fn != "" && !b.exists(filepath.Join(pkg.SourceDir, fn)) {
			b.logf("build step %d of %d: skipping %s, %s not found", idx+1, len(steps), step.Kind, fn)
			continue
		}
		b.setState(pkg, v, step.Kind.state())
		cmd := Command{
			Path: step.Argv[0],
			Args: step.Argv[1:],
			Dir:  pkg.SourceDir,
			Env:  v.BuildEnv,
		}
		b.logf("build step %d of %d: %v", idx+1, len(steps), cmd)
		start := time.Now()
		ev := trace.Event(pkg.Name+" "+step.Kind.String(), "build")
		exitCode, err := b.execer().Run(ctx, cmd, RunIO{
			Stdout: teeTo(b.Stdout, buildLog),
			Stderr: teeTo(b.Stderr, buildLog),
		})
		ev.Args = trace.StepArgs{
			Package:  pkg.Name,
			Variant:  v.Name,
			Step:     step.Kind.String(),
			ExitCode: exitCode,
		}
		ev.Done()
		if err != nil || exitCode != 0 {
			b.setState(pkg, v, StateFailed)
			if err != nil {
				exitCode = -1
			}
			return &CommandFailedError{
				Step:     step.Kind,
				ExitCode: exitCode,
				Package:  pkg.Name,
				Variant:  v.Name,
				Args:     step.Argv,
				Err:      err,
			}
		}
		times = append(times, timing{step, time.Since(start)})
	}
	b.setState(pkg, v, StateDone)

	for _, t := range times {
		b.logf("  %s: %v (command: %v)", t.step.Kind, t.dur, t.step.Argv)
	}
	return nil
}

func formatEnv(env map[string]string) string {
	kvs := make([]string, 0, len(env))
	for k, v := range env {
		kvs = append(kvs, k+"="+v)
	}
	sort.Strings(kvs)
	return strings.Join(kvs, " ")
}
