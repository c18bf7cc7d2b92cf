package serialization

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts serialization activity. A nil *Metrics records nothing.
type Metrics struct {
	contextsAttached prometheus.Counter
	knownTypesMerged prometheus.Counter
	operations       *prometheus.CounterVec
}

// NewMetrics creates the serialization collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		contextsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mvvm",
			Subsystem: "serialization",
			Name:      "contexts_attached_total",
			Help:      "Number of serialization contexts attached to a context stack.",
		}),
		knownTypesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mvvm",
			Subsystem: "serialization",
			Name:      "known_types_merged_total",
			Help:      "Number of known types inherited from parent contexts.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mvvm",
			Subsystem: "serialization",
			Name:      "operations_total",
			Help:      "Number of serialization operations by kind and result.",
		}, []string{"kind", "result"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.contextsAttached, m.knownTypesMerged, m.operations} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) contextAttached(merged int) {
	if m == nil {
		return
	}
	m.contextsAttached.Inc()
	if merged > 0 {
		m.knownTypesMerged.Add(float64(merged))
	}
}

func (m *Metrics) operation(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(kind, result).Inc()
}
