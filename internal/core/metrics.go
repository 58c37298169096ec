package core

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// serviceMetrics counts mutations and imported rows.
// A nil *serviceMetrics is valid and records nothing.
type serviceMetrics struct {
	mutations    *prometheus.CounterVec
	importedRows *prometheus.CounterVec
}

func newServiceMetrics(reg prometheus.Registerer) (*serviceMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &serviceMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster",
			Subsystem: "core",
			Name:      "mutations_total",
			Help:      "Count of record mutations by operation and outcome",
		}, []string{"op", "outcome"}),
		importedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster",
			Subsystem: "core",
			Name:      "import_rows_total",
			Help:      "Count of CSV rows processed by import, by result",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.mutations, m.importedRows} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			if c == m.mutations {
				m.mutations = existing
			} else {
				m.importedRows = existing
			}
		}
	}
	return m, nil
}

// observe records the outcome of a mutation.
func (m *serviceMetrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// observeImport records the rows inserted and skipped by one import.
func (m *serviceMetrics) observeImport(inserted, skipped int) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues("inserted").Add(float64(inserted))
	m.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}
