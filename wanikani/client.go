// Package wanikani is a thin client for the WaniKani v2 API: paginated
// collections fetched incrementally with a bearer token. Retry and
// backoff are the caller's concern.
package wanikani

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorbit99/wics-extension-sub000/models"
)

const DefaultBaseURL = "https://api.wanikani.com/v2"

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type collectionPage struct {
	Object string `json:"object"`
	Pages  struct {
		NextURL *string `json:"next_url"`
	} `json:"pages"`
	TotalCount    int               `json:"total_count"`
	DataUpdatedAt *time.Time        `json:"data_updated_at"`
	Data          []json.RawMessage `json:"data"`
}

// Collection walks every page of a collection endpoint, optionally
// restricted to entries updated after the given instant, and returns the
// concatenated raw entries. A 304 from a conditional poll yields an
// empty result, not an error.
func (c *Client) Collection(ctx context.Context, path string, updatedAfter *time.Time) ([]json.RawMessage, error) {
	pageURL := c.baseURL + path
	if updatedAfter != nil {
		query := url.Values{}
		query.Set("updated_after", updatedAfter.UTC().Format(time.RFC3339))
		pageURL += "?" + query.Encode()
	}

	var entries []json.RawMessage
	for pageURL != "" {
		page, err := c.fetchPage(ctx, pageURL, updatedAfter)
		if err != nil {
			return nil, err
		}
		if page == nil {
			break
		}

		entries = append(entries, page.Data...)
		pageURL = ""
		if page.Pages.NextURL != nil {
			pageURL = *page.Pages.NextURL
		}
	}
	return entries, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string, updatedAfter *time.Time) (*collectionPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Wanikani-Revision", "20170710")
	if updatedAfter != nil {
		req.Header.Set("If-Modified-Since", updatedAfter.UTC().Format(http.TimeFormat))
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d: %s", pageURL, resp.StatusCode, body)
	}

	var page collectionPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}
	return &page, nil
}

// Subjects fetches catalog subjects updated after the given instant.
func (c *Client) Subjects(ctx context.Context, updatedAfter *time.Time) ([]models.Subject, error) {
	return decodeEntries[models.Subject](c, ctx, "/subjects", updatedAfter)
}

// Assignments fetches the user's assignments updated after the given
// instant.
func (c *Client) Assignments(ctx context.Context, updatedAfter *time.Time) ([]models.Assignment, error) {
	return decodeEntries[models.Assignment](c, ctx, "/assignments", updatedAfter)
}

func decodeEntries[T any](c *Client, ctx context.Context, path string, updatedAfter *time.Time) ([]T, error) {
	raw, err := c.Collection(ctx, path, updatedAfter)
	if err != nil {
		return nil, err
	}

	entries := make([]T, 0, len(raw))
	for _, entry := range raw {
		var decoded T
		if err := json.Unmarshal(entry, &decoded); err != nil {
			return nil, fmt.Errorf("decode %s entry: %w", path, err)
		}
		entries = append(entries, decoded)
	}
	return entries, nil
}
