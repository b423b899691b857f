package recipe

import (
	"sync/atomic"
	"testing"
)

func TestParseName(t *testing.T) {
	for _, tt := range []struct {
		name string
		want PackageName
	}{
		{
			name: "libogg-1.2.2",
			want: PackageName{Pkg: "libogg", Upstream: "1.2.2"},
		},

		{
			name: "pkg-config-0.29.2",
			want: PackageName{Pkg: "pkg-config", Upstream: "0.29.2"},
		},

		{
			name: "util-linux-2.32.1-rc1",
			want: PackageName{Pkg: "util-linux", Upstream: "2.32.1-rc1"},
		},

		{
			name: "zlib",
			want: PackageName{Pkg: "zlib"},
		},

		{
			name: "pkgs/libogg-1.2.2", // recipe directory
			want: PackageName{Pkg: "libogg", Upstream: "1.2.2"},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseName(tt.name)
			if got != tt.want {
				t.Fatalf("ParseName(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
			if tt.want.Upstream != "" && got.String() != tt.want.Pkg+"-"+tt.want.Upstream {
				t.Fatalf("String() = %q", got.String())
			}
		})
	}
}

func TestHostTriplet(t *testing.T) {
	if got, ok := HostTriplet("arm64"); !ok || got != "aarch64-linux-gnu" {
		t.Errorf("HostTriplet(arm64) = %q, %v", got, ok)
	}
	if _, ok := HostTriplet("sparc"); ok {
		t.Errorf("HostTriplet(sparc) unexpectedly known")
	}
}

func TestRunAtExitOrder(t *testing.T) {
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		RegisterAtExit(func() error {
			order = append(order, i)
			return nil
		})
	}
	if err := RunAtExit(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != 2 || order[2] != 0 {
		t.Fatalf("RunAtExit order = %v, want [2 1 0]", order)
	}
	atomic.StoreUint32(&atExit.closed, 0)
}
