// Package download fetches release archives over HTTP(S).
//
// Every fetch starts with a HEAD existence check; missing artifacts are
// reported with ErrArtifactNotFound before any transfer begins. The download
// itself runs in the background while byte counters are polled at a fixed
// interval and surfaced through a progress callback.
package download
