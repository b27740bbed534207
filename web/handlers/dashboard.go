package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"campusdash/chart"
	"campusdash/events"
	"campusdash/models"
	"campusdash/store"
	"campusdash/utils"
	assets "campusdash/web"
	"github.com/go-chi/chi/v5"
	ds "github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

type Dashboard struct {
	log         *zap.Logger
	templates   *template.Template
	store       *store.SeriesStore
	defaultDims models.Dimensions

	mu   sync.Mutex
	dims map[string]map[string]models.Dimensions // view id -> panel key -> measured size
}

// chartView is what the chart template renders.
type chartView struct {
	Key      string
	Title    string
	Colour   string
	Geometry chart.Geometry
}

type resizeSig struct {
	View  string            `json:"view"`
	Panel string            `json:"panel"`
	Dims  models.Dimensions `json:"dims"`
}

type seriesResponse struct {
	Panel     string             `json:"panel"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Points    []models.DataPoint `json:"points"`
}

func NewDashboard(log *zap.Logger, seriesStore *store.SeriesStore, defaultDims models.Dimensions) (dashboard *Dashboard, err error) {
	dashboard = &Dashboard{
		log:         log,
		store:       seriesStore,
		defaultDims: defaultDims,
		dims:        make(map[string]map[string]models.Dimensions),
	}
	templates := template.New("").Funcs(template.FuncMap{
		"coord": utils.FormatCoord,
	})
	dashboard.templates, err = templates.ParseFS(assets.Templates, "templates/dashboard/*.gohtml")
	return dashboard, err
}

func (d *Dashboard) Templates() *template.Template {
	return d.templates
}

func (d *Dashboard) Handlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"POST /resize":            d.ResizeHandler,
		"GET /api/series/{panel}": d.SeriesHandler,
	}
}

// Data is the index page model, every chart is laid out at the default size until the page reports its own.
func (d *Dashboard) Data(viewID string) map[string]any {
	panels := d.store.Panels()
	views := make([]chartView, 0, len(panels))
	for _, c := range panels {
		views = append(views, d.view(c, d.defaultDims))
	}
	return map[string]any{
		"view":   viewID,
		"charts": views,
	}
}

// OnConnect patches every chart for a freshly connected view.
func (d *Dashboard) OnConnect(sse *ds.ServerSentEventGenerator, viewID string, dims models.Dimensions) error {
	var writer strings.Builder
	for _, c := range d.store.Panels() {
		if dims.Width > 0 && dims.Height > 0 {
			d.setDims(viewID, c.Key(), dims)
		}
		if err := d.renderChart(&writer, c, d.viewDims(viewID, c.Key())); err != nil {
			return err
		}
	}
	if writer.Len() == 0 {
		return nil
	}
	return sse.PatchElements(writer.String())
}

// GeneratePatchOnEvent renders the chart named by event at the view's size and returns a closure that patches it.
func (d *Dashboard) GeneratePatchOnEvent(event *events.Event, viewID string) func(*ds.ServerSentEventGenerator) error {
	c, ok := d.store.Chart(event.PanelKey)
	if !ok {
		d.log.Warn("event for unknown panel", zap.String("panel", event.PanelKey))
		return nil
	}

	dims := d.viewDims(viewID, c.Key())
	var writer strings.Builder
	if err := d.renderChart(&writer, c, dims); err != nil {
		d.log.Error("couldn't render chart", zap.String("panel", c.Key()), zap.Error(err))
		return nil
	}
	d.log.Debug("chart patch",
		zap.String("panel", c.Key()),
		zap.String("view", viewID),
		zap.Int("points", event.Points),
		zap.Time("updated_at", time.UnixMilli(int64(event.Timestamp))),
		zap.Float64("width", dims.Width),
		zap.Float64("height", dims.Height),
	)

	return func(sse *ds.ServerSentEventGenerator) error {
		return sse.PatchElements(writer.String())
	}
}

func (d *Dashboard) Forget(viewID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.dims, viewID)
}

// ResizeHandler is called when the chart container of a page changes size.
func (d *Dashboard) ResizeHandler(w http.ResponseWriter, r *http.Request) {
	var sig resizeSig
	if err := ds.ReadSignals(r, &sig); err != nil {
		d.log.Debug("error reading signals", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	c, ok := d.store.Chart(sig.Panel)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	viewID := getViewID(w, r, sig.View)
	if sig.Dims.Width > 0 && sig.Dims.Height > 0 {
		d.setDims(viewID, c.Key(), sig.Dims)
	}

	var buf strings.Builder
	if err := d.renderChart(&buf, c, d.viewDims(viewID, c.Key())); err != nil {
		d.log.Error("couldn't render chart", zap.String("panel", c.Key()), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	sse := ds.NewSSE(w, r)
	if err := sse.PatchElements(buf.String()); err != nil {
		d.log.Debug("error patching chart", zap.Error(err))
	}
}

// SeriesHandler serves the current series of a panel as JSON.
func (d *Dashboard) SeriesHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "panel")
	if _, ok := d.store.Chart(key); !ok {
		http.Error(w, "unknown panel", http.StatusNotFound)
		return
	}

	series, ok := d.store.Current(key)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(seriesResponse{Panel: key, UpdatedAt: series.UpdatedAt, Points: series.Points})
}

func (d *Dashboard) view(c *models.Chart, dims models.Dimensions) chartView {
	series, _ := d.store.Current(c.Key())
	return chartView{
		Key:      c.Key(),
		Title:    c.Title(),
		Colour:   c.Colour(),
		Geometry: chart.Layout(series.Points, dims),
	}
}

func (d *Dashboard) renderChart(w *strings.Builder, c *models.Chart, dims models.Dimensions) error {
	return d.templates.ExecuteTemplate(w, "chart", d.view(c, dims))
}

func (d *Dashboard) viewDims(viewID, panelKey string) models.Dimensions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dims[viewID][panelKey].Or(d.defaultDims)
}

func (d *Dashboard) setDims(viewID, panelKey string, dims models.Dimensions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dims[viewID]; !ok {
		d.dims[viewID] = make(map[string]models.Dimensions)
	}
	d.dims[viewID][panelKey] = dims
}
