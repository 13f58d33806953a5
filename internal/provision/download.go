// download.go fetches release assets and repository files over HTTPS.
//
// Downloads use hashicorp/go-retryablehttp: release hosts and the NVIDIA
// repository mirror occasionally return transient 5xx responses, and a
// one-shot provisioner should ride those out rather than abort a host
// setup halfway through.

package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Downloader fetches the contents of a URL.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader is the production Downloader built on retryablehttp.
type HTTPDownloader struct {
	client *retryablehttp.Client
}

// NewHTTPDownloader returns a downloader with retry defaults suited to
// release-asset fetches: a few attempts with backoff, bounded per-request
// time, and the library's own logging silenced (the provisioner reports
// progress itself, in plain text).
func NewHTTPDownloader() *HTTPDownloader {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.HTTPClient.Timeout = 2 * time.Minute
	c.Logger = nil
	return &HTTPDownloader{client: c}
}

// Fetch downloads the URL and returns the response body. Non-2xx statuses
// after retries are errors naming the status, so the operator sees "404"
// instead of an empty file.
func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}
