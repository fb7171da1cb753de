// Package release resolves which release version of the tool to install and
// composes artifact URLs against the distribution base URL.
//
// An explicitly supplied version short-circuits resolution with zero network
// calls; otherwise the plain-text LATEST_VERSION pointer is fetched. All
// requests optionally route through a validated http:// proxy.
package release
