package backend

import (
	"context"
	"net/http"

	"coin-dashboard/internal/domain/entity"
)

// GeneratePodcast requests a podcast episode covering req.CoinIDs.
// Unset options take the defaults of entity.PodcastRequest.WithDefaults.
func (c *Client) GeneratePodcast(ctx context.Context, req entity.PodcastRequest) (*entity.PodcastData, error) {
	if err := entity.ValidatePodcastRequest(req); err != nil {
		return nil, err
	}
	var out entity.PodcastData
	err := c.getData(ctx, call{
		op:       "generate podcast",
		endpoint: "podcasts/generate",
		method:   http.MethodPost,
		path:     "/podcasts/generate",
		body:     req.WithDefaults(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableVoices lists the narrator voices the backend supports.
func (c *Client) AvailableVoices(ctx context.Context) ([]entity.VoiceOption, error) {
	var out []entity.VoiceOption
	err := c.getData(ctx, call{
		op:       "fetch available voices",
		endpoint: "podcasts/voices",
		method:   http.MethodGet,
		path:     "/podcasts/voices",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
