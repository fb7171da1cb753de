// Package version exposes build metadata for the installer binary.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. This is the
// installer's own version, not to be confused with the release version of
// the tool being installed (see internal/release).
package version
