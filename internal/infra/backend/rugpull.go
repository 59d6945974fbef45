package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"coin-dashboard/internal/domain/entity"
)

type analysisRequest struct {
	CoinData any `json:"coin_data"`
}

// RugPullAnalysis fetches the rug pull risk for coinID. When coinData is
// non-nil it is posted so the backend can skip its own market-data lookup.
func (c *Client) RugPullAnalysis(ctx context.Context, coinID string, coinData any) (*entity.RugPullRisk, error) {
	if err := entity.ValidateCoinID(coinID); err != nil {
		return nil, err
	}

	rc := call{
		op:       "fetch rug pull analysis",
		endpoint: "rugpull/{id}",
		method:   http.MethodGet,
		path:     "/rugpull/" + entity.EscapeCoinID(coinID),
	}
	if coinData != nil {
		rc.method = http.MethodPost
		rc.body = analysisRequest{CoinData: coinData}
	}

	raw, err := c.send(ctx, rc)
	if err != nil {
		c.logFailure(ctx, rc.op, err)
		return nil, err
	}
	risk, err := decodeAnalysis(raw)
	if err != nil {
		err = fmt.Errorf("%s: %w", rc.op, err)
		c.logFailure(ctx, rc.op, err)
		return nil, err
	}
	return risk, nil
}

// decodeAnalysis accepts the analysis either bare or inside a data envelope.
func decodeAnalysis(raw []byte) (*entity.RugPullRisk, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if data, ok := probe["data"]; ok {
		if _, bare := probe["score"]; !bare {
			raw = data
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, errors.New("response has no analysis")
	}

	var risk entity.RugPullRisk
	if err := json.Unmarshal(raw, &risk); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &risk, nil
}
