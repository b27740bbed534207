package store

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"campusdash/events"
	"campusdash/models"
)

// SeriesStore holds the charts shown on the dashboard and the current series of each one. Pollers are the only writers,
// every read hands out a copy.
type SeriesStore struct {
	hub *events.EventHub

	charts        map[string]*models.Chart
	orderedCharts []*models.Chart

	mu     sync.RWMutex
	series map[string]models.Series
}

func NewSeriesStore(hub *events.EventHub, charts ...*models.Chart) *SeriesStore {
	s := &SeriesStore{
		hub:    hub,
		charts: make(map[string]*models.Chart, len(charts)),
		series: make(map[string]models.Series, len(charts)),
	}
	for _, c := range charts {
		s.charts[c.Key()] = c
	}
	s.orderedCharts = slices.Collect(maps.Values(s.charts))
	slices.SortFunc(s.orderedCharts, func(a, b *models.Chart) int {
		return cmp.Or(
			cmp.Compare(a.LayoutPriority(), b.LayoutPriority()),
			strings.Compare(a.Key(), b.Key()),
		)
	})
	return s
}

// Panels returns the charts in layout order.
func (s *SeriesStore) Panels() []*models.Chart {
	return slices.Clone(s.orderedCharts)
}

func (s *SeriesStore) Chart(key string) (*models.Chart, bool) {
	c, ok := s.charts[key]
	return c, ok
}

// Replace swaps the series of a panel for points and tells subscribers about it. Writes for unknown panels are ignored.
func (s *SeriesStore) Replace(panelKey string, points []models.DataPoint, at time.Time) {
	if _, ok := s.charts[panelKey]; !ok {
		return
	}

	series := models.Series{Points: points, UpdatedAt: at}.Copy()

	s.mu.Lock()
	s.series[panelKey] = series
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(&events.Event{
			PanelKey:  panelKey,
			Timestamp: int(at.UnixMilli()),
			Points:    len(points),
		})
	}
}

// Current returns the latest series of a panel, ok is false until the first successful fetch.
func (s *SeriesStore) Current(panelKey string) (models.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[panelKey]
	if !ok {
		return models.Series{}, false
	}
	return series.Copy(), true
}
