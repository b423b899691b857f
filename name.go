package recipe

import "strings"

// PackageName is the parsed form of a package identifier such as
// libogg-1.2.2.
type PackageName struct {
	Pkg string // e.g. libogg

	// Upstream is the upstream version number. It is never parsed or compared,
	// and is meant for human consumption only. Empty if the identifier does
	// not carry a version.
	Upstream string
}

func (pn PackageName) String() string {
	if pn.Upstream == "" {
		return pn.Pkg
	}
	return pn.Pkg + "-" + pn.Upstream
}

// ParseName splits a package identifier into package and upstream version,
// e.g. pkg-config-0.29.2 parses into PackageName{Pkg: "pkg-config", Upstream:
// "0.29.2"}. The version starts at the first minus-separated part which
// begins with a digit.
func ParseName(name string) PackageName {
	if idx := strings.LastIndexByte(name, '/'); idx > -1 {
		name = name[idx+1:]
	}
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		if p := parts[i]; p != "" && p[0] >= '0' && p[0] <= '9' {
			return PackageName{
				Pkg:      strings.Join(parts[:i], "-"),
				Upstream: strings.Join(parts[i:], "-"),
			}
		}
	}
	return PackageName{Pkg: name}
}
