// Package entity defines the core domain entities and validation logic for the dashboard.
// It contains market data shapes (coins, details, chart points), rug pull analysis results,
// news and podcast payloads, along with their validation rules and domain-specific errors.
package entity

// Coin is a market listing entry as returned by the market-data API.
// JSON tags mirror the upstream field names so payloads decode without mapping.
type Coin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	LastUpdated              string  `json:"last_updated"`
}

// CoinDetail extends Coin with a description and nested market data.
type CoinDetail struct {
	Coin
	Description Description `json:"description"`
	MarketData  MarketData  `json:"market_data"`
}

// Description holds localized coin descriptions. Only English is requested.
type Description struct {
	En string `json:"en"`
}

// MarketData is the market_data block of a coin detail response.
type MarketData struct {
	CurrentPrice             CurrencyValue `json:"current_price"`
	MarketCap                CurrencyValue `json:"market_cap"`
	TotalVolume              CurrencyValue `json:"total_volume"`
	High24h                  CurrencyValue `json:"high_24h"`
	Low24h                   CurrencyValue `json:"low_24h"`
	PriceChangePercentage24h float64       `json:"price_change_percentage_24h"`
	ATH                      CurrencyValue `json:"ath"`
	ATL                      CurrencyValue `json:"atl"`
	CirculatingSupply        float64       `json:"circulating_supply"`
	MaxSupply                *float64      `json:"max_supply"`
	TotalSupply              *float64      `json:"total_supply"`
}

// CurrencyValue is a per-currency figure. The dashboard only quotes USD.
type CurrencyValue struct {
	USD float64 `json:"usd"`
}

// ChartPoint is a single point of a historical price series.
type ChartPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}
