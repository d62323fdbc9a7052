package symbols

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPSource fetches the letters document from a static URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (s *HTTPSource) Letters(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, unavailable("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, unavailable("fetch "+s.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, unavailable("fetch "+s.URL, fmt.Errorf("status %d", res.StatusCode))
	}
	return Decode(res.Body)
}
