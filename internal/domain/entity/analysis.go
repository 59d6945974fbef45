package entity

// RugPullRisk is the rug pull analysis produced by the backend for a single coin.
// Score ranges from 0 (low risk) to 100 (high risk).
type RugPullRisk struct {
	Score         int      `json:"score"`
	Justification string   `json:"justification"`
	CoinInfo      CoinInfo `json:"coin_info"`
}

// CoinInfo is the market snapshot the backend used for its assessment.
// Field names are the backend's literal display keys.
type CoinInfo struct {
	Name              string   `json:"Name"`
	Symbol            string   `json:"Symbol"`
	CurrentPrice      *float64 `json:"Current Price"`
	MarketCap         *float64 `json:"Market Cap"`
	TradingVolume24h  *float64 `json:"24h Trading Volume"`
	CirculatingSupply *float64 `json:"Circulating Supply"`
	TotalSupply       *float64 `json:"Total Supply"`
	MaxSupply         *float64 `json:"Max Supply"`
	PriceChange24h    *float64 `json:"24h Price Change"`
	Low24h            *float64 `json:"24h Low"`
	High24h           *float64 `json:"24h High"`
}

// RiskLevel buckets a rug pull score for display.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low Risk"
	RiskModerate RiskLevel = "Moderate Risk"
	RiskHigh     RiskLevel = "High Risk"
	RiskExtreme  RiskLevel = "Extreme Risk"
)

// Level classifies the score into quartiles: [0,25) low, [25,50) moderate,
// [50,75) high and 75 or above extreme.
func (r RugPullRisk) Level() RiskLevel {
	switch {
	case r.Score < 25:
		return RiskLow
	case r.Score < 50:
		return RiskModerate
	case r.Score < 75:
		return RiskHigh
	default:
		return RiskExtreme
	}
}
