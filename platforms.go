package recipe

// Platforms maps each known platform identifier to the GNU host triplet which
// autoconf expects in --host= when cross-compiling for it.
var Platforms = map[string]string{
	"amd64": "x86_64-pc-linux-gnu",
	"i686":  "i686-pc-linux-gnu",
	"arm64": "aarch64-linux-gnu",
	"arm":   "arm-linux-gnueabihf",
}

// HostTriplet returns the GNU host triplet for platform, if known.
func HostTriplet(platform string) (string, bool) {
	triplet, ok := Platforms[platform]
	return triplet, ok
}
