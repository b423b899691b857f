package build

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"
)

// Command is one invocation of an external program. Dir and Env are explicit
// so that concurrent builds never share a working directory or environment.
type Command struct {
	Path string
	Args []string

	// Dir is the working directory of the command.
	Dir string

	// Env augments the environment the command inherits. Entries override
	// inherited variables of the same name.
	Env map[string]string
}

func (c Command) String() string {
	return shellquote.Join(append([]string{c.Path}, c.Args...)...)
}

// RunIO connects a command to its output.
type RunIO struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Execer runs external commands.
type Execer interface {
	// Run executes cmd and waits for it to complete. A command which runs to
	// completion results in its exit code and a nil error, regardless of
	// the exit code.
	//
	// If ctx is canceled before the process terminates, the process is
	// killed and Run returns ctx.Err().
	Run(ctx context.Context, cmd Command, runIO RunIO) (exitCode int, _ error)
}

// ProcessExecer runs commands as child processes.
type ProcessExecer struct {
	// Environ returns the environment which commands inherit. Defaults to
	// os.Environ.
	Environ func() []string
}

var _ Execer = (*ProcessExecer)(nil)

func (p *ProcessExecer) environ() []string {
	if p.Environ != nil {
		return p.Environ()
	}
	return os.Environ()
}

func (p *ProcessExecer) Run(ctx context.Context, c Command, runIO RunIO) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	env := mergeEnv(p.environ(), c.Env)
	path, err := lookPath(c.Path, env)
	if err != nil {
		return -1, err
	}
	cmd := exec.Command(path, c.Args...)
	cmd.Args[0] = c.Path
	cmd.Dir = c.Dir
	cmd.Env = env
	cmd.Stdout = runIO.Stdout
	cmd.Stderr = runIO.Stderr
	// Run the command in its own process group so that cancellation reaches
	// the processes make spawns, too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return -1, err
	}

	exited := make(chan struct{})
	killed := make(chan struct{})
	go func() {
		defer close(killed)
		select {
		case <-ctx.Done():
			unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		case <-exited:
		}
	}()
	err = cmd.Wait()
	close(exited)
	<-killed

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return -1, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// lookPath resolves file like exec.LookPath, but searches the PATH of env
// (a list of KEY=value entries) instead of the PATH of the current process.
// Names containing a slash are returned unchanged.
func lookPath(file string, env []string) (string, error) {
	if strings.Contains(file, "/") {
		return file, nil
	}
	var path string
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = strings.TrimPrefix(kv, "PATH=")
		}
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		fn := filepath.Join(dir, file)
		if !strings.Contains(fn, "/") {
			fn = "./" + fn
		}
		if fi, err := os.Stat(fn); err == nil && fi.Mode().IsRegular() && fi.Mode().Perm()&0111 != 0 {
			return fn, nil
		}
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// mergeEnv returns base (a list of KEY=value entries) with overrides applied:
// entries of base whose key is overridden are dropped, and overrides are
// appended in key order.
func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key := kv
		if idx := strings.IndexByte(kv, '='); idx > -1 {
			key = kv[:idx]
		}
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
