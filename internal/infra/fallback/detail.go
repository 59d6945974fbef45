package fallback

import (
	"time"

	"coin-dashboard/internal/domain/entity"
)

// Reason explains why a synthesized detail record is being served.
type Reason int

const (
	// ReasonRateLimited means the upstream answered with a non-success status.
	ReasonRateLimited Reason = iota
	// ReasonUnavailable means the request could not be completed at all.
	ReasonUnavailable
)

// Placeholder figures for synthesized details. These are illustrative, not market data.
const (
	athMultiplier       = 1.5
	atlMultiplier       = 0.5
	placeholderSupply   = 19_000_000
	placeholderMaxTotal = 21_000_000
)

func (r Reason) description() string {
	if r == ReasonRateLimited {
		return "This is a mock description since the CoinGecko API rate limit has been reached."
	}
	return "This is a mock description since there was an error fetching data from the CoinGecko API."
}

// Detail synthesizes a CoinDetail for id from the fallback set.
// It returns nil when id is not part of the set.
func Detail(id string, reason Reason, now time.Time) *entity.CoinDetail {
	coin, ok := Find(id, now)
	if !ok {
		return nil
	}

	maxSupply := float64(placeholderMaxTotal)
	totalSupply := float64(placeholderMaxTotal)

	return &entity.CoinDetail{
		Coin:        coin,
		Description: entity.Description{En: reason.description()},
		MarketData: entity.MarketData{
			CurrentPrice:             entity.CurrencyValue{USD: coin.CurrentPrice},
			MarketCap:                entity.CurrencyValue{USD: coin.MarketCap},
			TotalVolume:              entity.CurrencyValue{USD: coin.TotalVolume},
			High24h:                  entity.CurrencyValue{USD: coin.High24h},
			Low24h:                   entity.CurrencyValue{USD: coin.Low24h},
			PriceChangePercentage24h: coin.PriceChangePercentage24h,
			ATH:                      entity.CurrencyValue{USD: coin.CurrentPrice * athMultiplier},
			ATL:                      entity.CurrencyValue{USD: coin.CurrentPrice * atlMultiplier},
			CirculatingSupply:        placeholderSupply,
			MaxSupply:                &maxSupply,
			TotalSupply:              &totalSupply,
		},
	}
}
