// Package version exposes the build version.
package version

// version is injected at build time via -ldflags.
var version string

// Value returns the build version; empty when built without ldflags.
func Value() string {
	return version
}
