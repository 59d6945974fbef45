package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRugPullRisk_Level(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{score: 0, want: RiskLow},
		{score: 24, want: RiskLow},
		{score: 25, want: RiskModerate},
		{score: 49, want: RiskModerate},
		{score: 50, want: RiskHigh},
		{score: 74, want: RiskHigh},
		{score: 75, want: RiskExtreme},
		{score: 100, want: RiskExtreme},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RugPullRisk{Score: tt.score}.Level(), "score %d", tt.score)
	}
}

func TestCoinInfo_DecodesBackendKeys(t *testing.T) {
	body := `{
		"score": 75,
		"justification": "thin liquidity",
		"coin_info": {
			"Name": "Pepe",
			"Symbol": "PEPE",
			"Current Price": 0.00001234,
			"Market Cap": 5000000,
			"24h Trading Volume": 250000,
			"Total Supply": 1000000000000,
			"Max Supply": null
		}
	}`

	var risk RugPullRisk
	require.NoError(t, json.Unmarshal([]byte(body), &risk))

	assert.Equal(t, 75, risk.Score)
	assert.Equal(t, "Pepe", risk.CoinInfo.Name)
	require.NotNil(t, risk.CoinInfo.CurrentPrice)
	assert.InDelta(t, 0.00001234, *risk.CoinInfo.CurrentPrice, 1e-12)
	require.NotNil(t, risk.CoinInfo.TradingVolume24h)
	assert.Equal(t, 250000.0, *risk.CoinInfo.TradingVolume24h)
	assert.Nil(t, risk.CoinInfo.MaxSupply)
	assert.Nil(t, risk.CoinInfo.CirculatingSupply)
}

func TestPodcastRequest_WithDefaults(t *testing.T) {
	t.Run("fills unset options", func(t *testing.T) {
		req := PodcastRequest{CoinIDs: []string{"bitcoin"}}.WithDefaults()

		assert.Equal(t, 5, req.DurationMinutes)
		assert.Equal(t, "neutral", req.VoiceType)
		require.NotNil(t, req.IncludePriceAnalysis)
		assert.True(t, *req.IncludePriceAnalysis)
	})

	t.Run("keeps explicit false", func(t *testing.T) {
		off := false
		req := PodcastRequest{
			CoinIDs:              []string{"bitcoin"},
			DurationMinutes:      10,
			VoiceType:            "excited",
			IncludePriceAnalysis: &off,
		}.WithDefaults()

		assert.Equal(t, 10, req.DurationMinutes)
		assert.Equal(t, "excited", req.VoiceType)
		assert.False(t, *req.IncludePriceAnalysis)
	})

	t.Run("does not mutate receiver", func(t *testing.T) {
		orig := PodcastRequest{CoinIDs: []string{"bitcoin"}}
		_ = orig.WithDefaults()
		assert.Nil(t, orig.IncludePriceAnalysis)
		assert.Zero(t, orig.DurationMinutes)
	})
}
