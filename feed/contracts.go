package feed

import (
	"context"
	"time"

	"campusdash/models"
)

// Fetcher retrieves one raw sample from upstream.
type Fetcher interface {
	Fetch(ctx context.Context) (RawSample, error)
}

// Sink receives the transformed series of a panel, replacing whatever it held before.
type Sink interface {
	Replace(panelKey string, points []models.DataPoint, at time.Time)
}
