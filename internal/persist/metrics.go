package persist

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts codec outcomes. A nil *Metrics records nothing.
type Metrics struct {
	saves      prometheus.Counter
	saveErrors prometheus.Counter
	loads      prometheus.Counter
	loadErrors prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_saves_total",
			Help: "Successful writes of the project blob.",
		}),
		saveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_save_errors_total",
			Help: "Failed writes of the project blob.",
		}),
		loads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_loads_total",
			Help: "Successful loads of the project blob.",
		}),
		loadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_load_errors_total",
			Help: "Loads aborted by a read or decode failure.",
		}),
	}
	reg.MustRegister(m.saves, m.saveErrors, m.loads, m.loadErrors)
	return m
}

func (m *Metrics) saved() {
	if m != nil {
		m.saves.Inc()
	}
}

func (m *Metrics) saveFailed() {
	if m != nil {
		m.saveErrors.Inc()
	}
}

func (m *Metrics) loaded() {
	if m != nil {
		m.loads.Inc()
	}
}

func (m *Metrics) loadFailed() {
	if m != nil {
		m.loadErrors.Inc()
	}
}
