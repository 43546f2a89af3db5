// Package server exposes the renderer over HTTP and websocket: one-shot PNG renders,
// click-to-point conversion, and interactive sessions that re-render on every request.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/willbeason/multibrot/internal/metrics"
	"github.com/willbeason/multibrot/pkg/config"
	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/palette"
	"github.com/willbeason/multibrot/pkg/plane"
	"github.com/willbeason/multibrot/pkg/render"
	"github.com/willbeason/multibrot/pkg/transforms"
)

// Server holds the configuration every request starts from.
type Server struct {
	cfg      config.Config
	log      *slog.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry

	// OriginPatterns are the cross-origin hosts allowed to open websocket sessions.
	OriginPatterns []string
}

func New(cfg config.Config, log *slog.Logger) *Server {
	reg := prometheus.NewRegistry()

	return &Server{
		cfg:      cfg,
		log:      log,
		metrics:  metrics.New(reg),
		registry: reg,
	}
}

// Router wires all endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/render", s.handleRender)
	r.Get("/point", s.handlePoint)
	r.Get("/palette", s.handlePalette)
	r.Get("/ws", s.handleWebsocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// NewHTTPServer builds the http.Server serving Router on the configured address.
func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("request_id", uuid.NewString())

	req, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	j, err := req.resolve(s.cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := s.renderPNG(r.Context(), j, log)
	if err != nil {
		if r.Context().Err() != nil {
			// The client went away; there is nobody to answer.
			return
		}
		writeError(w, err)
		return
	}

	outside, _ := j.params.Colors.Hex()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Background-Color", outside)
	_, _ = w.Write(data)
}

// renderPNG runs one render pass and encodes the result.
func (s *Server) renderPNG(ctx context.Context, j job, log *slog.Logger) ([]byte, error) {
	mode := j.params.Mode.String()
	start := time.Now()

	img := render.NewImage(j.width, j.height)
	err := render.Render(ctx, img, j.params)
	switch {
	case err == nil:
		s.metrics.ObserveRender(mode, metrics.OutcomeOK, j.width*j.height, start)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.ObserveRender(mode, metrics.OutcomeCancelled, 0, start)
		log.Debug("render abandoned", "mode", mode, "error", err)
		return nil, err
	default:
		s.metrics.ObserveRender(mode, metrics.OutcomeFailed, 0, start)
		log.Error("render failed", "mode", mode, "error", err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.RGBA); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}

	log.Info("rendered",
		"mode", mode,
		"width", j.width,
		"height", j.height,
		"c", plane.Label(j.params.C),
		"elapsed", time.Since(start),
	)

	return buf.Bytes(), nil
}

type orbitPoint struct {
	R float64 `json:"r"`
	I float64 `json:"i"`
}

type pointResponse struct {
	R     float64      `json:"r"`
	I     float64      `json:"i"`
	Label string       `json:"label"`
	Orbit []orbitPoint `json:"orbit,omitempty"`
}

// handlePoint converts a normalized cursor position into the complex point under it.
// With orbit=n it also returns the first n iterates of 0 under z^e + point.
func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req, err := parseQuery(q)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.U == nil || req.V == nil {
		writeError(w, fmt.Errorf("%w: u and v are required", errBadRequest))
		return
	}

	n, err := intParam(q, "orbit")
	if err != nil {
		writeError(w, err)
		return
	}

	cfg, err := req.config(s.cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case n < 0:
		writeError(w, fmt.Errorf("%w: orbit %d is negative", errBadRequest, n))
		return
	case s.cfg.MaxIterations > 0 && n > s.cfg.MaxIterations:
		writeError(w, fmt.Errorf("%w: orbit %d exceeds %d", errBadRequest, n, s.cfg.MaxIterations))
		return
	}
	if err := cfg.CheckLimits(); err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	z := plane.MapToPlane(*req.U, *req.V, cfg.Bounds)
	resp := pointResponse{R: z.R, I: z.I, Label: plane.Label(z)}

	for _, p := range transforms.Orbit(transforms.Multibrot{Exponent: cfg.Exponent, C: z}, cplx.Zero, n) {
		resp.Orbit = append(resp.Orbit, orbitPoint{R: p.R, I: p.I})
	}

	writeJSON(w, http.StatusOK, resp)
}

type paletteResponse struct {
	Outside         string `json:"outside"`
	Inside          string `json:"inside"`
	OutsideInverted string `json:"outside_inverted"`
	InsideInverted  string `json:"inside_inverted"`
}

// handlePalette normalizes a color pair and reports its complements.
func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	outside, inside := s.cfg.Outside, s.cfg.Inside
	if v := r.URL.Query().Get("outside"); v != "" {
		outside = v
	}
	if v := r.URL.Query().Get("inside"); v != "" {
		inside = v
	}

	pair, err := palette.NewPair(outside, inside)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	o, i := pair.Hex()
	inv := pair.Inverted()
	writeJSON(w, http.StatusOK, paletteResponse{
		Outside:         o,
		Inside:          i,
		OutsideInverted: inv.Outside.Hex(),
		InsideInverted:  inv.Inside.Hex(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps request validation failures to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, errBadRequest) {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
