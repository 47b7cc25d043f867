package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TriageMetrics exposes counters/histograms for the triage desk.
type TriageMetrics struct {
	admittedTotal *prometheus.CounterVec
	servedTotal   *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
	waiting       prometheus.Gauge
	waitSeconds   *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		admittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "admitted_total",
			Help:      "Total patients admitted to the triage queue",
		}, []string{"urgency"}),
		servedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "served_total",
			Help:      "Total patients taken off the triage queue",
		}, []string{"urgency"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "rejected_total",
			Help:      "Admissions refused by input validation",
		}, []string{"reason"}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "waiting",
			Help:      "Patients currently waiting",
		}),
		waitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "wait_seconds",
			Help:      "Time between admission and being served",
			Buckets:   []float64{30, 60, 300, 600, 1800, 3600, 7200, 14400},
		}, []string{"urgency"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "store_errors_total",
			Help:      "Failed admission store operations",
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.admittedTotal, m.servedTotal, m.rejectedTotal, m.waiting, m.waitSeconds, m.storeErrors)
	return m
}

func (m *TriageMetrics) ObserveAdmitted(urgency int) {
	if m == nil {
		return
	}
	m.admittedTotal.WithLabelValues(strconv.Itoa(urgency)).Inc()
}

func (m *TriageMetrics) ObserveServed(urgency int, waitSeconds float64) {
	if m == nil {
		return
	}
	label := strconv.Itoa(urgency)
	m.servedTotal.WithLabelValues(label).Inc()
	if waitSeconds >= 0 {
		m.waitSeconds.WithLabelValues(label).Observe(waitSeconds)
	}
}

func (m *TriageMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

func (m *TriageMetrics) ObserveStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

func (m *TriageMetrics) SetWaiting(n int) {
	if m == nil {
		return
	}
	m.waiting.Set(float64(n))
}

// TriageSnapshot is a flat read of the triage families for display.
type TriageSnapshot struct {
	Waiting     float64
	Admitted    float64
	Served      float64
	Rejected    float64
	StoreErrors float64
	ServedCount uint64
	WaitSum     float64
}

// AverageWaitSeconds is the mean observed wait, zero when nobody was served.
func (s TriageSnapshot) AverageWaitSeconds() float64 {
	if s.ServedCount == 0 {
		return 0
	}
	return s.WaitSum / float64(s.ServedCount)
}

// Snapshot gathers the triage families from gatherer and sums across labels.
func Snapshot(gatherer prometheus.Gatherer) (TriageSnapshot, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return TriageSnapshot{}, err
	}

	var snap TriageSnapshot
	for _, mf := range mfs {
		switch mf.GetName() {
		case "clinic_triage_waiting":
			snap.Waiting = sumGauge(mf)
		case "clinic_triage_admitted_total":
			snap.Admitted = sumCounter(mf)
		case "clinic_triage_served_total":
			snap.Served = sumCounter(mf)
		case "clinic_triage_rejected_total":
			snap.Rejected = sumCounter(mf)
		case "clinic_triage_store_errors_total":
			snap.StoreErrors = sumCounter(mf)
		case "clinic_triage_wait_seconds":
			for _, metric := range mf.GetMetric() {
				h := metric.GetHistogram()
				snap.ServedCount += h.GetSampleCount()
				snap.WaitSum += h.GetSampleSum()
			}
		}
	}
	return snap, nil
}

func sumCounter(mf *dto.MetricFamily) float64 {
	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

func sumGauge(mf *dto.MetricFamily) float64 {
	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetGauge().GetValue()
	}
	return total
}
