package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/controller"
	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/couchcryptid/aew-track-map/internal/render"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxControlBody bounds POST /api/controls request bodies.
const maxControlBody = 4 << 10

// App is the part of the controller exposed over HTTP.
type App interface {
	sharedobs.ReadinessChecker
	View() controller.View
	SetYear(ctx context.Context, year string) error
	SetMonth(value string) error
	SetPointsOnly(pointsOnly bool)
	Select(groupID, index int) error
	MapDoubleClick(ctx context.Context)
}

// SceneSource renders the current map contents as GeoJSON.
type SceneSource interface {
	Scene() *geojson.FeatureCollection
}

// Options carries the optional routes.
type Options struct {
	// Events streams view updates. Nil disables GET /api/events.
	Events http.Handler
	// DataDir is served under /data/. Empty disables the route.
	DataDir string
}

// Server exposes the map API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	app        App
	scene      SceneSource
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(addr string, app App, scene SceneSource, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		app:    app,
		scene:  scene,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(app))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("POST /api/controls", s.handleControls)
	mux.HandleFunc("POST /api/tracks/{group}/elements/{index}/select", s.handleSelect)
	mux.HandleFunc("POST /api/map/dblclick", s.handleDoubleClick)

	if opts.Events != nil {
		mux.Handle("GET /api/events", streaming(opts.Events))
	}
	if opts.DataDir != "" {
		mux.Handle("GET /data/", http.StripPrefix("/data/", http.FileServer(http.Dir(opts.DataDir))))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// streaming lifts the server write timeout for long-lived responses.
func streaming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.View())
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.scene.Scene())
}

// controlsRequest mirrors the page's filter controls. Absent fields are left unchanged.
type controlsRequest struct {
	Year       *yearValue `json:"year"`
	Month      *string    `json:"month"`
	PointsOnly *bool      `json:"points_only"`
}

// yearValue accepts the year as a JSON string or number.
type yearValue string

func (y *yearValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*y = yearValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("year must be a string or number")
	}
	*y = yearValue(n.String())
	return nil
}

// handleControls applies month and mode first so a year change renders with
// the new filter as soon as its data arrives.
func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	var req controlsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxControlBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	if req.Month != nil {
		if err := s.app.SetMonth(*req.Month); err != nil {
			s.writeAppError(w, err)
			return
		}
	}
	if req.PointsOnly != nil {
		s.app.SetPointsOnly(*req.PointsOnly)
	}
	if req.Year != nil {
		// The load outlives a client that navigates away; the result still
		// reaches other viewers through the event stream.
		if err := s.app.SetYear(context.WithoutCancel(r.Context()), string(*req.Year)); err != nil {
			s.writeAppError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, s.app.View())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	group, err := strconv.Atoi(r.PathValue("group"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group", nil)
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid element index", nil)
		return
	}

	if err := s.app.Select(group, index); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.View())
}

func (s *Server) handleDoubleClick(w http.ResponseWriter, r *http.Request) {
	s.app.MapDoubleClick(r.Context())
	writeJSON(w, http.StatusOK, s.app.View())
}

// writeAppError maps controller errors to status codes. The current view is
// included so the page can show the status line.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, controller.ErrInvalidYear), errors.Is(err, domain.ErrInvalidMonth):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrYearNotFound), errors.Is(err, render.ErrNoSuchElement):
		status = http.StatusNotFound
	case errors.Is(err, controller.ErrSuperseded):
		status = http.StatusConflict
	default:
		// Upstream status and transport failures.
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "status", status, "error", err)
	}
	view := s.app.View()
	writeError(w, status, err.Error(), &view)
}

type errorResponse struct {
	Error string           `json:"error"`
	View  *controller.View `json:"view,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, view *controller.View) {
	writeJSON(w, status, errorResponse{Error: msg, View: view})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
