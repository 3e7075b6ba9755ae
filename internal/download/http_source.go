package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// HTTPSource reads an object served over plain HTTP using Range requests.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Header http.Header
}

func NewHTTPSource(client *http.Client, url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: client}
}

func (s *HTTPSource) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *HTTPSource) newRequest(ctx context.Context, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.Header {
		req.Header[k] = v
	}
	return req, nil
}

func (s *HTTPSource) Size(ctx context.Context) (int64, error) {
	req, err := s.newRequest(ctx, http.MethodHead)
	if err != nil {
		return 0, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HEAD %s: unexpected status %s", s.URL, resp.Status)
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("HEAD %s: server did not report a content length", s.URL)
	}
	return resp.ContentLength, nil
}

func (s *HTTPSource) ReadRange(ctx context.Context, offset, count int64) (io.ReadCloser, error) {
	req, err := s.newRequest(ctx, http.MethodGet)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+count-1))
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusPartialContent:
		if start, ok := contentRangeStart(resp.Header.Get("Content-Range")); ok && start != offset {
			resp.Body.Close()
			return nil, fmt.Errorf("GET %s: server returned range starting at %d, want %d", s.URL, start, offset)
		}
		return resp.Body, nil
	case resp.StatusCode == http.StatusOK && offset == 0:
		// server ignored the Range header
		return readCloser{Reader: io.LimitReader(resp.Body, count), Closer: resp.Body}, nil
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", s.URL, resp.Status)
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// contentRangeStart parses "bytes 10-19/100".
func contentRangeStart(v string) (int64, bool) {
	v, ok := strings.CutPrefix(strings.TrimSpace(v), "bytes ")
	if !ok {
		return 0, false
	}
	first, _, ok := strings.Cut(v, "-")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
