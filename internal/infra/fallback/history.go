package fallback

import (
	"math/rand"
	"time"

	"coin-dashboard/internal/domain/entity"
)

// DefaultBasePrice seeds the series for coins outside the fallback set.
const DefaultBasePrice = 1000.0

// DefaultDateLayout renders chart dates like the en-US short date form (3/14/2024).
const DefaultDateLayout = "1/2/2006"

const (
	noiseFloor = 0.9
	noiseSpan  = 0.2
	trendSpan  = 0.3
)

// SeriesOptions controls how a synthetic series is rendered.
type SeriesOptions struct {
	// Now anchors the newest point. Zero means time.Now().
	Now time.Time
	// Layout formats each point's date. Empty means DefaultDateLayout.
	Layout string
	// Location converts Now before formatting. Nil means time.Local.
	Location *time.Location
	// Rand supplies the noise factor. Nil means a time-seeded source.
	Rand *rand.Rand
}

// History synthesizes a daily price series for id spanning days days.
//
// The series always has days+1 points ordered oldest first. Each price is the
// coin's fallback price (or DefaultBasePrice) scaled by a noise factor in
// [0.9, 1.1) and an upward trend factor rising linearly from 1.0 to 1.3.
func History(id string, days int, opts SeriesOptions) []entity.ChartPoint {
	if days < 0 {
		days = 0
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	layout := opts.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}
	rng := opts.Rand
	if rng == nil {
		// #nosec G404 -- chart noise does not need cryptographic randomness.
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	base := DefaultBasePrice
	if coin, ok := Find(id, now); ok {
		base = coin.CurrentPrice
	}

	points := make([]entity.ChartPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)

		noise := noiseFloor + rng.Float64()*noiseSpan
		trend := 1.0
		if days > 0 {
			trend = 1 + (float64(days-i)/float64(days))*trendSpan
		}

		points = append(points, entity.ChartPoint{
			Date:  date.Format(layout),
			Price: base * noise * trend,
		})
	}

	return points
}
