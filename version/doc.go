// Package version reports the library version used in the User-Agent header
// and on telemetry resources.
//
// The version is read from the module build info when gopocket is a
// dependency, and can be pinned at build time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/gopocket/version.Override=1.2.0"
package version
