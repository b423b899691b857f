package buildlog

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogAppearsOnFinish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "libogg-1.2.2")
	l, err := Create(dir, "libogg-1.2.2", "all")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintf(l, "checking for gcc... gcc\n")
	if _, err := os.Stat(Path(dir, "all")); !os.IsNotExist(err) {
		t.Fatalf("log visible before Finish: %v", err)
	}
	if err := l.Finish(nil); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(Path(dir, "all"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# libogg-1.2.2 (variant all), started ",
		"checking for gcc... gcc\n",
		"# build succeeded after ",
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("log does not contain %q:\n%s", want, b)
		}
	}
}

func TestLogRecordsFailure(t *testing.T) {
	dir := t.TempDir()
	l, err := Create(dir, "libogg-1.2.2", "arm")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Finish(errors.New("configure: exit status 1")); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(Path(dir, "arm"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "# build failed after ") || !strings.Contains(string(b), "configure: exit status 1") {
		t.Errorf("log does not record failure:\n%s", b)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	if _, err := Latest(dir); err == nil {
		t.Errorf("Latest(empty dir) unexpectedly succeeded")
	}
	for _, v := range []string{"all", "arm"} {
		if err := ioutil.WriteFile(Path(dir, v), []byte(v), 0644); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(Path(dir, "all"), old, old); err != nil {
		t.Fatal(err)
	}
	got, err := Latest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := Path(dir, "arm"); got != want {
		t.Errorf("Latest() = %q, want %q", got, want)
	}
}
