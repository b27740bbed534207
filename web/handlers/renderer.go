package web

import (
	"html/template"
	"net/http"

	"campusdash/events"
	"campusdash/models"
	ds "github.com/starfederation/datastar-go/datastar"
)

// Renderer is the UI served by Server. Handlers are keyed by "METHOD /pattern". Per client state is keyed by view id,
// one per rendered page.
type Renderer interface {
	Templates() *template.Template
	Handlers() map[string]http.HandlerFunc
	Data(viewID string) map[string]any
	OnConnect(sse *ds.ServerSentEventGenerator, viewID string, dims models.Dimensions) error
	GeneratePatchOnEvent(event *events.Event, viewID string) func(*ds.ServerSentEventGenerator) error
	Forget(viewID string)
}
