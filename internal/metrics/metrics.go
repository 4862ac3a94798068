package metrics

import (
	"net/http"

	"github.com/1broseidon/peerwin/internal/peer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts native operations and tracks live peers. It is a
// peer.Observer.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	peers      *prometheus.GaugeVec
}

// NewRecorder returns a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peerwin",
			Name:      "native_operations_total",
			Help:      "Native window operations issued, by operation and peer kind.",
		}, []string{"op", "kind"}),
		peers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "peerwin",
			Name:      "peers",
			Help:      "Native peer windows currently owned, by kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.operations, r.peers)
	return r
}

// Observe implements peer.Observer.
func (r *Recorder) Observe(ev peer.Event) {
	r.operations.WithLabelValues(string(ev.Op), ev.Kind).Inc()
	switch ev.Op {
	case peer.OpCreate:
		r.peers.WithLabelValues(ev.Kind).Inc()
	case peer.OpDestroy:
		r.peers.WithLabelValues(ev.Kind).Dec()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for additional collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
