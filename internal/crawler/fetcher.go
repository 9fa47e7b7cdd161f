package crawler

import (
	"context"
	"io"
	"net/http"
	"time"

	xerrors "github.com/mitch-ross/search-engine/internal/errors"
)

// maxRedirects caps how many redirects a single fetch follows.
const maxRedirects = 3

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Fetcher retrieves the HTML body of a URL. Implementations must be
// safe for concurrent use; tests supply in-memory fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches pages over HTTP with a bounded redirect chain and
// a per-request timeout.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Fetch retrieves the body at url, or an error for network failures and
// non-2xx statuses.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.NewFetchError(url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, xerrors.NewFetchError(url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, xerrors.NewFetchError(url, errStatus(resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, xerrors.NewFetchError(url, err)
	}
	return body, nil
}

// errStatus is a minimal error for unexpected HTTP statuses.
type errStatus int

func (e errStatus) Error() string {
	return http.StatusText(int(e))
}
