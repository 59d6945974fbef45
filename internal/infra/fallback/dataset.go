// Package fallback provides the static market snapshot served when the live
// market-data API is throttled, failing or too slow.
//
// Listings, search results, coin details and price history can all be
// synthesized from the same six records, so the dashboard keeps rendering
// plausible data while the upstream recovers.
package fallback

import (
	"strings"
	"time"

	"coin-dashboard/internal/domain/entity"
)

// isoLayout matches the millisecond UTC timestamps the market-data API emits.
const isoLayout = "2006-01-02T15:04:05.000Z"

// records is the fixed fallback set in market-cap order. LastUpdated is
// stamped at read time.
var records = []entity.Coin{
	{
		ID:                       "bitcoin",
		Symbol:                   "btc",
		Name:                     "Bitcoin",
		Image:                    "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
		CurrentPrice:             65234.12,
		MarketCap:                1278961235432,
		MarketCapRank:            1,
		PriceChangePercentage24h: 2.34,
		TotalVolume:              32456789012,
		High24h:                  65834.21,
		Low24h:                   64532.45,
	},
	{
		ID:                       "ethereum",
		Symbol:                   "eth",
		Name:                     "Ethereum",
		Image:                    "https://assets.coingecko.com/coins/images/279/large/ethereum.png",
		CurrentPrice:             3456.78,
		MarketCap:                415678901234,
		MarketCapRank:            2,
		PriceChangePercentage24h: -1.23,
		TotalVolume:              15678901234,
		High24h:                  3512.34,
		Low24h:                   3402.56,
	},
	{
		ID:                       "binancecoin",
		Symbol:                   "bnb",
		Name:                     "BNB",
		Image:                    "https://assets.coingecko.com/coins/images/825/large/bnb-icon2_2x.png",
		CurrentPrice:             567.89,
		MarketCap:                87654321098,
		MarketCapRank:            3,
		PriceChangePercentage24h: 0.56,
		TotalVolume:              2345678901,
		High24h:                  573.21,
		Low24h:                   563.45,
	},
	{
		ID:                       "solana",
		Symbol:                   "sol",
		Name:                     "Solana",
		Image:                    "https://assets.coingecko.com/coins/images/4128/large/solana.png",
		CurrentPrice:             123.45,
		MarketCap:                45678901234,
		MarketCapRank:            4,
		PriceChangePercentage24h: 4.56,
		TotalVolume:              3456789012,
		High24h:                  126.78,
		Low24h:                   119.23,
	},
	{
		ID:                       "ripple",
		Symbol:                   "xrp",
		Name:                     "XRP",
		Image:                    "https://assets.coingecko.com/coins/images/44/large/xrp-symbol-white-128.png",
		CurrentPrice:             0.5678,
		MarketCap:                23456789012,
		MarketCapRank:            5,
		PriceChangePercentage24h: -0.23,
		TotalVolume:              1234567890,
		High24h:                  0.5712,
		Low24h:                   0.5643,
	},
	{
		ID:                       "cardano",
		Symbol:                   "ada",
		Name:                     "Cardano",
		Image:                    "https://assets.coingecko.com/coins/images/975/large/cardano.png",
		CurrentPrice:             0.4567,
		MarketCap:                16789012345,
		MarketCapRank:            6,
		PriceChangePercentage24h: 1.23,
		TotalVolume:              789012345,
		High24h:                  0.4612,
		Low24h:                   0.4503,
	},
}

// Size returns the number of records in the fallback set.
func Size() int {
	return len(records)
}

// Coins returns a copy of the full fallback set stamped with now.
func Coins(now time.Time) []entity.Coin {
	return stamp(records, now)
}

// Top returns the first n fallback records. n is clamped to [0, Size()].
func Top(n int, now time.Time) []entity.Coin {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return stamp(records[:n], now)
}

// Filter returns the records whose name or symbol contains query, ignoring case.
// The query is matched as given, spaces included. The result is never nil so it
// encodes as an empty JSON array.
func Filter(query string, now time.Time) []entity.Coin {
	q := strings.ToLower(query)
	out := make([]entity.Coin, 0, len(records))
	for _, c := range records {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return stamp(out, now)
}

// Find returns the fallback record for id.
func Find(id string, now time.Time) (entity.Coin, bool) {
	for _, c := range records {
		if c.ID == id {
			c.LastUpdated = now.UTC().Format(isoLayout)
			return c, true
		}
	}
	return entity.Coin{}, false
}

func stamp(src []entity.Coin, now time.Time) []entity.Coin {
	ts := now.UTC().Format(isoLayout)
	out := make([]entity.Coin, len(src))
	for i, c := range src {
		c.LastUpdated = ts
		out[i] = c
	}
	return out
}
