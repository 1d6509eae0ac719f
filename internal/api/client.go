package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// httpGetter is the shared GET+decode path of every upstream client.
type httpGetter struct {
	source  string
	http    *http.Client
	headers map[string]string
}

func newGetter(source string, client *http.Client) httpGetter {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return httpGetter{source: source, http: client, headers: map[string]string{}}
}

// getJSON issues a GET and decodes a 2xx body into out.
// Every failure comes back as *Error.
func (g httpGetter) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Source: g.source, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Source: g.source, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Source: g.source, URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:       KindUpstream,
			Source:     g.source,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindDecode, Source: g.source, URL: url, Err: err}
	}
	return nil
}

func decodeError(source, url string, err error) error {
	return &Error{Kind: KindDecode, Source: source, URL: url, Err: err}
}
