package version

import "runtime/debug"

// version is overridden at build time:
//
//	go build -ldflags "-X github.com/vinodismyname/leadlens/pkg/version.version=v0.3.0"
var version = "dev"

// Version returns the module version from build info when the binary was
// built from a tagged module, else the ldflags value.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		return info.Main.Version
	}
	return version
}
