// Package config defines installer settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the release base URL, the install root directory,
// an optional HTTP proxy and the network timeout. All fields have defaults,
// so running without a settings file is fully supported.
package config
