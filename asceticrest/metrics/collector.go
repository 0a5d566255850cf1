package metrics

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/rest"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/signals"
)

// StatusError labels requests that ended without a response.
const StatusError = "error"

// Collector counts upstream requests and their latency per logical route.
// It is a prometheus.Collector and can be registered as a whole.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCollector(namespace string) *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rest_requests_total",
				Help:      "Total number of upstream REST requests",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rest_request_duration_seconds",
				Help:      "Upstream REST request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.duration.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.duration.Collect(ch)
}

func (c *Collector) Register(reg prometheus.Registerer) error {
	return errors.Wrap(reg.Register(c), "metrics: register collector")
}

// Observe records an ended request.
func (c *Collector) Observe(event session.RequestEndedEvent) error {
	view := event.RequestView
	if view == nil {
		return nil
	}
	method := view.Method
	if method == "" {
		method = http.MethodGet
	}
	status := StatusError
	if view.Status != nil {
		status = strconv.Itoa(*view.Status)
	}
	c.requests.WithLabelValues(view.Route, method, status).Inc()
	if view.ResponseTime != nil {
		c.duration.WithLabelValues(view.Route, method).Observe(view.ResponseTime.Seconds())
	}
	return nil
}

func (c *Collector) AttachSession(s session.ObservableSession) signals.Disposable {
	return s.OnRequestEnded().Attach(c.Observe, c)
}

// AttachPool observes every session the pool hands out.
func (c *Collector) AttachPool(p *rest.SessionPool) signals.Disposable {
	return p.OnSessionStarted().Attach(func(event session.SessionScopeStartedEvent) error {
		if observable, ok := event.Session.(session.ObservableSession); ok {
			c.AttachSession(observable)
		}
		return nil
	}, c)
}
