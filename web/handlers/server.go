package web

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"campusdash/events"
	"campusdash/metrics"
	"campusdash/models"
	assets "campusdash/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ds "github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

type Server struct {
	log      *zap.Logger
	addr     string
	renderer Renderer
	hub      *events.EventHub
	handler  http.Handler
	httpSrv  *http.Server

	// cancelStreams ends every open update stream, Shutdown alone would wait for them forever.
	cancelStreams context.CancelFunc
}

type dimsSig struct {
	View string            `json:"view"`
	Dims models.Dimensions `json:"dims"`
}

func NewServer(log *zap.Logger, addr string, renderer Renderer, hub *events.EventHub) *Server {
	s := &Server{
		log:      log,
		addr:     addr,
		renderer: renderer,
		hub:      hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(zapLogger(log))

	r.Get("/", s.IndexHandler)
	r.Get("/updates", s.UpdatesHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.FileServer(http.FS(assets.Static)))

	for route, uiHandler := range renderer.Handlers() {
		method, pattern, _ := strings.Cut(route, " ")
		r.Method(method, pattern, uiHandler)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s.cancelStreams = cancel
	s.handler = r
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.log.Info("http listen", zap.String("addr", s.addr))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelStreams()
	return s.httpSrv.Shutdown(ctx)
}

func zapLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

// IndexHandler is the main entrypoint for the UI
func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	getClientID(w, r)

	var buf bytes.Buffer
	err := s.renderer.Templates().ExecuteTemplate(&buf, "index", s.renderer.Data(uuid.NewString()))
	if err != nil {
		s.log.Error("couldn't execute template for index", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// UpdatesHandler keeps an SSE stream open and patches charts whenever a panel's series is replaced.
func (s *Server) UpdatesHandler(w http.ResponseWriter, r *http.Request) {
	var sig dimsSig
	if err := ds.ReadSignals(r, &sig); err != nil {
		s.log.Debug("error reading signals", zap.Error(err))
	}
	viewID := getViewID(w, r, sig.View)

	_, updates, cancel := s.hub.Subscribe()
	defer cancel()
	defer s.renderer.Forget(viewID)
	s.log.Debug("update stream opened", zap.String("view", viewID), zap.Int("subscribers", s.hub.Subscribers()))

	metrics.SSEClients.Inc()
	defer metrics.SSEClients.Dec()

	sse := ds.NewSSE(w, r)
	if err := s.renderer.OnConnect(sse, viewID, sig.Dims); err != nil {
		s.log.Debug("error patching on connect", zap.Error(err))
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-updates:
			if !ok {
				return
			}
			patch := s.renderer.GeneratePatchOnEvent(event, viewID)
			if patch == nil {
				continue
			}
			if err := patch(sse); err != nil {
				s.log.Debug("error patching on event", zap.Error(err))
				return
			}
		}
	}
}
