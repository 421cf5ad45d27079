// Package version carries the build identity of the rangelist binary.
package version

// Version is the semantic version of the binary, injected at build time via
// -ldflags "-X github.com/manan/range-list/pkg/version.Version=...".
var Version = "dev"

// GitHash is the git commit hash the binary was built from.
var GitHash = "<unknown>"
