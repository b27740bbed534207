package models

import "time"

// DataPoint is a single bar of a chart, label is a human readable day such as "Feb 3".
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is the full sequence shown by one chart. A new Series always replaces the previous one.
type Series struct {
	Points    []DataPoint `json:"points"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (s Series) Copy() Series {
	points := make([]DataPoint, len(s.Points))
	copy(points, s.Points)
	return Series{Points: points, UpdatedAt: s.UpdatedAt}
}

// Dimensions is the measured size of the element a chart is drawn into.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Or returns d, or fallback when either side isn't a usable size.
func (d Dimensions) Or(fallback Dimensions) Dimensions {
	if d.Width <= 0 || d.Height <= 0 {
		return fallback
	}
	return d
}

// ValueSource selects where a point's value comes from when transforming an API response.
type ValueSource string

const (
	// ValuesFromPayload uses the counts returned by the API.
	ValuesFromPayload ValueSource = "payload"
	// ValuesFromFixture looks values up in the built-in table keyed by timestamp.
	ValuesFromFixture ValueSource = "fixture"
)

func (v ValueSource) Valid() bool {
	return v == ValuesFromPayload || v == ValuesFromFixture
}
