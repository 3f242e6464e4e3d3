package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "duowatch"

// PrometheusRecorder implements Recorder with Prometheus counters.
type PrometheusRecorder struct {
	checks          *prom.CounterVec
	transitions     *prom.CounterVec
	displayCommands *prom.CounterVec
}

// NewPrometheusRecorder registers the duowatch counters on reg, creating a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		checks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Presence samples taken, by sampled presence",
		}, []string{"present"}),
		transitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Presence state changes, by target state",
		}, []string{"to"}),
		displayCommands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "display_commands_total",
			Help:      "Display arrangement commands, by outcome",
		}, []string{"result"}),
	}

	reg.MustRegister(pr.checks, pr.transitions, pr.displayCommands)
	return pr
}

func (p *PrometheusRecorder) IncCheck(present bool) {
	p.checks.WithLabelValues(strconv.FormatBool(present)).Inc()
}

func (p *PrometheusRecorder) IncTransition(to string) {
	p.transitions.WithLabelValues(to).Inc()
}

func (p *PrometheusRecorder) IncDisplayCommand(r Result) {
	p.displayCommands.WithLabelValues(string(r)).Inc()
}

// Handler serves the metrics of reg.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
