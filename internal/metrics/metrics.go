package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK        = "ok"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Metrics tracks render throughput for the server.
type Metrics struct {
	Renders           *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	PixelsRendered    prometheus.Counter
	WebsocketSessions prometheus.Gauge
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "multibrot_renders_total",
			Help: "Render passes by mode and outcome",
		}, []string{"mode", "outcome"}),
		RenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "multibrot_render_duration_seconds",
			Help:    "Wall time of completed render passes",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"mode"}),
		PixelsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "multibrot_pixels_rendered_total",
			Help: "Pixels written by completed render passes",
		}),
		WebsocketSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "multibrot_websocket_sessions",
			Help: "Open interactive websocket sessions",
		}),
	}
}

// ObserveRender records one render pass started at start.
func (m *Metrics) ObserveRender(mode, outcome string, pixels int, start time.Time) {
	m.Renders.WithLabelValues(mode, outcome).Inc()
	if outcome != OutcomeOK {
		return
	}

	m.RenderDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	m.PixelsRendered.Add(float64(pixels))
}

func (m *Metrics) SessionOpened() {
	m.WebsocketSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	m.WebsocketSessions.Dec()
}
