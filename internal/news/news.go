// Package news fetches current headlines for the search_news operation.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://newsapi.org/v2/everything"

// Article is a single search hit.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Description string `json:"description"`
}

// Searcher finds recent news articles for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Article, error)
}

// Client queries the NewsAPI "everything" endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("news: API key cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}, nil
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Article, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("news: parse base URL: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(maxResults))
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("news: build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	c.logger.Info("searching news", zap.String("query", query), zap.Int("max_results", maxResults))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("news: API returned status %d: %s", resp.StatusCode, body)
	}

	var apiResp struct {
		Status   string `json:"status"`
		Articles []struct {
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("news: decode response: %w", err)
	}

	articles := make([]Article, 0, len(apiResp.Articles))
	for _, a := range apiResp.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Description: a.Description,
		})
	}
	return articles, nil
}
