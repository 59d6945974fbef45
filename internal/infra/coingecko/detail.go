package coingecko

import (
	"encoding/json"

	"coin-dashboard/internal/domain/entity"
)

// detailWire is the /coins/{id} payload. Unlike the markets endpoint it nests
// prices under market_data and sends image as a size map.
type detailWire struct {
	ID            string             `json:"id"`
	Symbol        string             `json:"symbol"`
	Name          string             `json:"name"`
	Image         json.RawMessage    `json:"image"`
	MarketCapRank int                `json:"market_cap_rank"`
	LastUpdated   string             `json:"last_updated"`
	Description   entity.Description `json:"description"`
	MarketData    entity.MarketData  `json:"market_data"`
}

type imageSizes struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

func (w detailWire) toEntity() *entity.CoinDetail {
	md := w.MarketData
	return &entity.CoinDetail{
		Coin: entity.Coin{
			ID:                       w.ID,
			Symbol:                   w.Symbol,
			Name:                     w.Name,
			Image:                    pickImage(w.Image),
			CurrentPrice:             md.CurrentPrice.USD,
			MarketCap:                md.MarketCap.USD,
			MarketCapRank:            w.MarketCapRank,
			PriceChangePercentage24h: md.PriceChangePercentage24h,
			TotalVolume:              md.TotalVolume.USD,
			High24h:                  md.High24h.USD,
			Low24h:                   md.Low24h.USD,
			LastUpdated:              w.LastUpdated,
		},
		Description: w.Description,
		MarketData:  md,
	}
}

// pickImage accepts either a plain URL or a size map, preferring the largest.
func pickImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var url string
	if err := json.Unmarshal(raw, &url); err == nil {
		return url
	}
	var sizes imageSizes
	if err := json.Unmarshal(raw, &sizes); err != nil {
		return ""
	}
	switch {
	case sizes.Large != "":
		return sizes.Large
	case sizes.Small != "":
		return sizes.Small
	default:
		return sizes.Thumb
	}
}
