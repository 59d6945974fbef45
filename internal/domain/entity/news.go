package entity

// NewsArticle is a single aggregated news item.
type NewsArticle struct {
	Title          string   `json:"title"`
	Source         string   `json:"source"`
	URL            string   `json:"url"`
	Timestamp      string   `json:"timestamp"`
	Summary        string   `json:"summary"`
	Sentiment      *float64 `json:"sentiment,omitempty"`
	SentimentLabel string   `json:"sentiment_label,omitempty"`
	MentionedCoins []string `json:"mentioned_coins,omitempty"`
}

// NewsOverview is the market-wide sentiment summary.
type NewsOverview struct {
	Sentiment      float64  `json:"sentiment"`
	SentimentLabel string   `json:"sentiment_label"`
	TrendingTopics []string `json:"trending_topics"`
	Timestamp      string   `json:"timestamp"`
}

// NewsSummary bundles the latest articles with the market overview.
type NewsSummary struct {
	Articles       []NewsArticle `json:"articles"`
	MarketOverview NewsOverview  `json:"market_overview"`
}

// NewsArticlesResponse is the result of an article query filtered by coins.
type NewsArticlesResponse struct {
	Articles  []NewsArticle `json:"articles"`
	Query     string        `json:"query"`
	Timestamp string        `json:"timestamp"`
}

// TrendingTopic is a topic currently mentioned across news sources.
type TrendingTopic struct {
	Topic     string `json:"topic"`
	Mentions  int    `json:"mentions"`
	Sentiment string `json:"sentiment"`
}
