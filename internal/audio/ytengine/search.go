package ytengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var (
	videoPattern    = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)
	errNoVideoMatch = errors.New("no video found for the given query")
)

// searchResolver scrapes the YouTube results page for video matches. The
// data API needs credentials; the results page does not.
type searchResolver struct {
	baseURL string
	client  *http.Client
}

func newSearchResolver() *searchResolver {
	return &searchResolver{
		baseURL: "https://www.youtube.com",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FirstVideoURL returns the watch URL of the top search result.
func (r *searchResolver) FirstVideoURL(ctx context.Context, query string) (string, error) {
	urls, err := r.VideoURLs(ctx, query, 1)
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// VideoURLs returns watch URLs for up to limit distinct results, in the
// order the results page lists them.
func (r *searchResolver) VideoURLs(ctx context.Context, query string, limit int) ([]string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var urls []string
	for _, m := range videoPattern.FindAllStringSubmatch(string(body), -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		urls = append(urls, fmt.Sprintf("%s/watch?v=%s", r.baseURL, id))
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	if len(urls) == 0 {
		return nil, errNoVideoMatch
	}
	return urls, nil
}
