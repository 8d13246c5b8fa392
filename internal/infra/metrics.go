package infra

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics captures the service counters for job dispatch and relaying.
type Metrics interface {
	IncJobsSubmitted(model string)
	IncPromptsRejected()
	IncFramesBlocked(model string)
	RelayOpened(model string)
	RelayClosed(model string)
}

// NoopMetrics implements Metrics without emitting anything.
type NoopMetrics struct{}

func (NoopMetrics) IncJobsSubmitted(string) {}
func (NoopMetrics) IncPromptsRejected()     {}
func (NoopMetrics) IncFramesBlocked(string) {}
func (NoopMetrics) RelayOpened(string)      {}
func (NoopMetrics) RelayClosed(string)      {}

// PromMetrics implements Metrics backed by Prometheus collectors.
type PromMetrics struct {
	jobsSubmitted   *prometheus.CounterVec
	promptsRejected prometheus.Counter
	framesBlocked   *prometheus.CounterVec
	activeRelays    *prometheus.GaugeVec
	once            sync.Once
}

func NewPromMetrics(namespace string) *PromMetrics {
	p := &PromMetrics{
		jobsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_submitted_total",
			Help:      "Generation jobs dispatched to a backend, by model",
		}, []string{"model"}),
		promptsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompts_rejected_total",
			Help:      "Prompts rejected by the guard gate",
		}),
		framesBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_blocked_total",
			Help:      "Progress frames replaced by the safety gate, by model",
		}, []string{"model"}),
		activeRelays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_relays",
			Help:      "Progress relays currently streaming, by model",
		}, []string{"model"}),
	}
	p.register()
	return p
}

func (p *PromMetrics) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.jobsSubmitted, p.promptsRejected, p.framesBlocked, p.activeRelays)
	})
}

func (p *PromMetrics) IncJobsSubmitted(model string) { p.jobsSubmitted.WithLabelValues(model).Inc() }
func (p *PromMetrics) IncPromptsRejected()           { p.promptsRejected.Inc() }
func (p *PromMetrics) IncFramesBlocked(model string) { p.framesBlocked.WithLabelValues(model).Inc() }
func (p *PromMetrics) RelayOpened(model string)      { p.activeRelays.WithLabelValues(model).Inc() }
func (p *PromMetrics) RelayClosed(model string)      { p.activeRelays.WithLabelValues(model).Dec() }

// MetricsHandler exposes the default Prometheus registry over HTTP.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
