package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

const (
	// DefaultTimeout bounds connecting and waiting for response headers.
	DefaultTimeout = 5 * time.Second
	// DefaultUserAgent is sent on the request that follows a redirect.
	DefaultUserAgent = "Mozilla/5.0 (compatible; pda)"

	maxBodyBytes = 1 << 20
)

// Source performs one blocking request and returns the response body.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) ([]byte, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// HTTPSource GETs a URL. A single 301 or 302 is followed by hand, carrying a User-Agent on the
// second request, which is what script hosts that bounce through a redirect expect.
type HTTPSource struct {
	URL       string
	UserAgent string
	client    *http.Client
}

// NewHTTPSource returns a source for rawURL. A zero timeout means DefaultTimeout.
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}
	return &HTTPSource{
		URL:       rawURL,
		UserAgent: DefaultUserAgent,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch performs the GET, following at most one redirect.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.get(ctx, s.URL, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		location := resp.Header.Get("Location")
		utils.UncheckedError(resp.Body.Close())
		if location == "" {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		next, err := resolve(s.URL, location)
		if err != nil {
			return nil, &TransportError{Cause: err}
		}
		resp, err = s.get(ctx, next, s.UserAgent)
		if err != nil {
			return nil, err
		}
	}
	defer utils.UncheckedErrorFunc(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Cause: errors.Wrap(err, "reading body")}
	}
	return body, nil
}

func (s *HTTPSource) get(ctx context.Context, target, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	return resp, nil
}

func resolve(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	locURL, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(locURL).String(), nil
}
