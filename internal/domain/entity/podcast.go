package entity

// Podcast generation defaults applied when the caller leaves an option unset.
const (
	DefaultPodcastDurationMinutes = 5
	DefaultPodcastVoice           = "neutral"
)

// PodcastRequest configures a podcast generation call.
// IncludePriceAnalysis is a pointer so that an explicit false is distinguishable from unset.
type PodcastRequest struct {
	CoinIDs              []string `json:"coin_ids"`
	DurationMinutes      int      `json:"duration_minutes"`
	VoiceType            string   `json:"voice_type"`
	IncludePriceAnalysis *bool    `json:"include_price_analysis"`
}

// WithDefaults returns a copy of the request with unset options filled in.
func (r PodcastRequest) WithDefaults() PodcastRequest {
	out := r
	if out.DurationMinutes <= 0 {
		out.DurationMinutes = DefaultPodcastDurationMinutes
	}
	if out.VoiceType == "" {
		out.VoiceType = DefaultPodcastVoice
	}
	if out.IncludePriceAnalysis == nil {
		include := true
		out.IncludePriceAnalysis = &include
	}
	return out
}

// PodcastData describes a generated podcast episode.
type PodcastData struct {
	PodcastID         string   `json:"podcast_id"`
	Title             string   `json:"title"`
	AudioURL          string   `json:"audio_url"`
	CoinsCovered      []string `json:"coins_covered"`
	DurationSeconds   int      `json:"duration_seconds"`
	TranscriptExcerpt string   `json:"transcript_excerpt"`
	VoiceType         string   `json:"voice_type"`
	CreatedAt         string   `json:"created_at"`
	ExpiresAt         *string  `json:"expires_at"`
}

// VoiceOption is a selectable narrator voice.
type VoiceOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
