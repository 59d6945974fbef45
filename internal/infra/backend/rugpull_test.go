package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/domain/entity"
)

const analysisJSON = `{
	"score": 18,
	"justification": "Established network with deep liquidity.",
	"coin_info": {
		"Name": "Bitcoin",
		"Symbol": "BTC",
		"Current Price": 70000,
		"Market Cap": 1300000000000,
		"24h Trading Volume": 30000000000,
		"Circulating Supply": 19650000,
		"Total Supply": 21000000,
		"Max Supply": null,
		"24h Price Change": 1.2,
		"24h Low": 68000,
		"24h High": 71000
	}
}`

func TestRugPullAnalysis_GET(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/rugpull/bitcoin", r.URL.Path)
		_, _ = w.Write([]byte(analysisJSON))
	}))
	defer srv.Close()

	// Act
	got, err := newTestClient(srv).RugPullAnalysis(context.Background(), "bitcoin", nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 18, got.Score)
	assert.Equal(t, entity.RiskLow, got.Level())
	assert.Equal(t, "BTC", got.CoinInfo.Symbol)
	require.NotNil(t, got.CoinInfo.CurrentPrice)
	assert.Equal(t, 70000.0, *got.CoinInfo.CurrentPrice)
	assert.Nil(t, got.CoinInfo.MaxSupply)
}

func TestRugPullAnalysis_POSTWithCoinData(t *testing.T) {
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(analysisJSON))
	}))
	defer srv.Close()

	coin := entity.Coin{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 70000}
	_, err := newTestClient(srv).RugPullAnalysis(context.Background(), "bitcoin", coin)

	require.NoError(t, err)
	require.Contains(t, body, "coin_data")
	var sent entity.Coin
	require.NoError(t, json.Unmarshal(body["coin_data"], &sent))
	assert.Equal(t, coin, sent)
}

func TestRugPullAnalysis_AcceptsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":` + analysisJSON + `}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).RugPullAnalysis(context.Background(), "bitcoin", nil)

	require.NoError(t, err)
	assert.Equal(t, 18, got.Score)
}

func TestRugPullAnalysis_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	got, err := newTestClient(srv).RugPullAnalysis(context.Background(), "bitcoin", nil)

	assert.Nil(t, got)
	assert.True(t, IsRateLimited(err))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.EqualError(t, err, "failed to fetch rug pull analysis: 429")
}

func TestRugPullAnalysis_BadBodies(t *testing.T) {
	for _, body := range []string{`not json`, `null`, `{"data":null}`, `{"score":"high"}`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			got, err := newTestClient(srv).RugPullAnalysis(context.Background(), "bitcoin", nil)

			assert.Nil(t, got)
			assert.Error(t, err)
		})
	}
}

func TestRugPullAnalysis_InvalidIDIssuesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).RugPullAnalysis(context.Background(), "Bit Coin", nil)

	assert.ErrorIs(t, err, entity.ErrInvalidCoinID)
	assert.Zero(t, calls.Load())
}
