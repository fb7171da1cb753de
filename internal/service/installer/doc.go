// Package installer orchestrates the installation sequence:
// remove stale PATH entry, resolve version, detect architecture, download,
// extract, relocate, clean up archives, register on PATH.
//
// The sequence is strictly linear. The first failing step aborts the run and
// completed steps are not rolled back; the entry points are the single place
// where failures are reported to the user.
package installer
