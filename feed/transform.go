package feed

import (
	"strconv"
	"time"

	"campusdash/models"
)

// LabelLayout renders a day as short month and day of month, e.g. "Feb 3".
const LabelLayout = "Jan 2"

const localTimestampLayout = "2006-01-02T15:04:05"

// Transform turns a raw sample into chart points, one per entry and in the same order.
func Transform(raw RawSample, values models.ValueSource, loc *time.Location) ([]models.DataPoint, error) {
	if loc == nil {
		loc = time.UTC
	}
	if values == "" {
		values = models.ValuesFromPayload
	}

	points := make([]models.DataPoint, 0, len(raw))
	for _, e := range raw {
		ts, err := parseTimestamp(e.Key, loc)
		if err != nil {
			return nil, newMalformedError("key "+strconv.Quote(e.Key)+" is not a timestamp", err)
		}

		var value float64
		switch values {
		case models.ValuesFromFixture:
			v, ok := fixtureCounts[e.Key]
			if !ok {
				return nil, newMalformedError("no fixture value for "+strconv.Quote(e.Key), nil)
			}
			value = v
		default:
			value = float64(e.Count)
		}

		points = append(points, models.DataPoint{Label: ts.Format(LabelLayout), Value: value})
	}
	return points, nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation(localTimestampLayout, s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}
