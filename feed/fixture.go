package feed

// fixtureCounts is the table the first version of the widget shipped with. Selecting the fixture value source looks
// every value up here instead of using the fetched counts.
var fixtureCounts = map[string]float64{
	"2023-01-31T00:00:00": 21,
	"2023-02-01T00:00:00": 32,
	"2023-02-02T00:00:00": 33,
	"2023-02-03T00:00:00": 39,
	"2023-02-04T00:00:00": 16,
	"2023-02-05T00:00:00": 16,
	"2023-02-06T00:00:00": 135,
}

// FixtureSample returns the fixture table as a sample, in date order.
func FixtureSample() RawSample {
	keys := []string{
		"2023-01-31T00:00:00",
		"2023-02-01T00:00:00",
		"2023-02-02T00:00:00",
		"2023-02-03T00:00:00",
		"2023-02-04T00:00:00",
		"2023-02-05T00:00:00",
		"2023-02-06T00:00:00",
	}
	sample := make(RawSample, 0, len(keys))
	for _, k := range keys {
		sample = append(sample, Entry{Key: k, Count: int64(fixtureCounts[k])})
	}
	return sample
}
