package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"coin-dashboard/internal/domain/entity"
)

// NewsSummary returns the latest articles with a market sentiment overview.
func (c *Client) NewsSummary(ctx context.Context) (*entity.NewsSummary, error) {
	var out entity.NewsSummary
	err := c.getData(ctx, call{
		op:       "fetch news summary",
		endpoint: "news/summary",
		method:   http.MethodGet,
		path:     "/news/summary",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TrendingTopics returns topics currently trending across news sources.
func (c *Client) TrendingTopics(ctx context.Context) ([]entity.TrendingTopic, error) {
	var out []entity.TrendingTopic
	err := c.getData(ctx, call{
		op:       "fetch trending topics",
		endpoint: "news/trending",
		method:   http.MethodGet,
		path:     "/news/trending",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewsArticles returns articles, filtered to coins when any are given.
func (c *Client) NewsArticles(ctx context.Context, coins ...string) (*entity.NewsArticlesResponse, error) {
	var query url.Values
	if ids := nonBlank(coins); len(ids) > 0 {
		query = url.Values{"coins": {strings.Join(ids, ",")}}
	}
	var out entity.NewsArticlesResponse
	err := c.getData(ctx, call{
		op:       "fetch news articles",
		endpoint: "news/articles",
		method:   http.MethodGet,
		path:     "/news/articles",
		query:    query,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
