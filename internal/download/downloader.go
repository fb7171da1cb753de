package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is how often download progress is reported.
const DefaultPollInterval = time.Second

// ErrArtifactNotFound is returned when the existence check does not confirm
// the artifact on the server. No download is attempted in that case.
var ErrArtifactNotFound = errors.New("artifact not found on server")

// ProgressFunc receives the number of bytes downloaded so far and the total
// expected, which is negative when the server did not report a length.
type ProgressFunc func(received, total int64)

// HTTPDoer describes the minimal HTTP client capability the downloader needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithProgressFunc sets the progress callback.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(d *Downloader) {
		d.progress = fn
	}
}

// WithPollInterval sets how often progress is reported during a transfer.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Downloader) {
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}

// Downloader fetches release archives over HTTP(S) and writes them to disk.
type Downloader struct {
	httpClient   HTTPDoer
	progress     ProgressFunc
	pollInterval time.Duration
}

// NewDownloader creates a Downloader using the provided HTTP client, which
// carries any proxy configuration.
func NewDownloader(httpClient HTTPDoer, opts ...Option) *Downloader {
	d := &Downloader{
		httpClient:   httpClient,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Fetch verifies the artifact exists (HTTP HEAD, expecting 200) and then
// downloads it to the destination path. The transfer itself runs in the
// background while progress is reported at the configured interval until
// completion. The destination file is removed on any failure.
func (d *Downloader) Fetch(ctx context.Context, artifactURL, destination string) error {
	if err := d.checkExists(ctx, artifactURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", artifactURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", artifactURL, resp.Status)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	if err := d.transfer(ctx, resp, out); err != nil {
		_ = out.Close()
		_ = os.Remove(destination)

		return err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(destination)

		return fmt.Errorf("finalize destination file: %w", err)
	}

	return nil
}

// checkExists performs the HEAD existence check against the artifact URL.
func (d *Downloader) checkExists(ctx context.Context, artifactURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, artifactURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build existence check request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("existence check for %s: %w", artifactURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w", artifactURL, ErrArtifactNotFound)
	}

	return nil
}

// transfer copies the response body to the output file in a goroutine while
// the caller polls the byte counter and reports progress until the copy
// signals completion on the done channel.
func (d *Downloader) transfer(ctx context.Context, resp *http.Response, out io.Writer) error {
	total := resp.ContentLength
	counter := new(byteCounter)
	done := make(chan error, 1)

	go func() {
		_, copyErr := io.Copy(io.MultiWriter(out, counter), resp.Body)
		done <- copyErr
	}()

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("transfer failed: %w", err)
			}

			d.report(counter.Count(), total)

			return nil
		case <-ticker.C:
			d.report(counter.Count(), total)
		case <-ctx.Done():
			// The request context aborts the body read; drain the copy result.
			<-done

			return ctx.Err()
		}
	}
}

func (d *Downloader) report(received, total int64) {
	if d.progress != nil {
		d.progress(received, total)
	}
}

// byteCounter counts bytes written through it. Safe for concurrent use.
type byteCounter struct {
	n atomic.Int64
}

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n.Add(int64(len(p)))
	return len(p), nil
}

// Count returns the number of bytes written so far.
func (c *byteCounter) Count() int64 {
	return c.n.Load()
}
