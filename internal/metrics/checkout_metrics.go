package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики оформления заказов и арбитража остатков.
type CheckoutMetrics struct {
	// Счётчики исходов оформления
	placementStarted    prometheus.Counter
	placementCompleted  prometheus.Counter
	placementRejected   prometheus.Counter
	placementIncomplete prometheus.Counter

	// Гистограммы времени выполнения
	placementDuration prometheus.Histogram
	stepDuration      *prometheus.HistogramVec

	// Счётчики Inventory Ledger
	reservations      *prometheus.CounterVec
	insufficientStock prometheus.Counter

	// Счётчики событий
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge для оформлений в полёте
	activePlacements prometheus.Gauge
}

// NewCheckoutMetrics создаёт новый экземпляр метрик оформления.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		placementStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_placement_started_total",
			Help: "Total number of order placements started",
		}),
		placementCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_placement_completed_total",
			Help: "Total number of order placements completed successfully",
		}),
		placementRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_placement_rejected_total",
			Help: "Total number of order placements rejected before any write",
		}),
		placementIncomplete: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_placement_incomplete_total",
			Help: "Total number of order placements interrupted after the order header was written",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "shop_placement_step_duration_seconds",
			Help:    "Duration of individual placement steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		reservations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_ledger_reservations_total",
			Help: "Total number of stock reservations processed by the inventory ledger",
		}, []string{"outcome"}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_ledger_insufficient_stock_total",
			Help: "Total number of reservations rejected for insufficient stock",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_timeline_events_total",
			Help: "Total number of order timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		activePlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "shop_active_placements",
			Help: "Number of currently running order placements",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPlacementStarted увеличивает счётчик запущенных оформлений.
func (m *CheckoutMetrics) RecordPlacementStarted() {
	m.placementStarted.Inc()
	m.activePlacements.Inc()
}

// RecordPlacementFinished уменьшает количество оформлений в полёте.
func (m *CheckoutMetrics) RecordPlacementFinished() {
	m.activePlacements.Dec()
}

// RecordPlacementCompleted увеличивает счётчик успешных оформлений.
func (m *CheckoutMetrics) RecordPlacementCompleted() {
	m.placementCompleted.Inc()
}

// RecordPlacementRejected увеличивает счётчик отклонённых до записи оформлений.
func (m *CheckoutMetrics) RecordPlacementRejected() {
	m.placementRejected.Inc()
}

// RecordPlacementIncomplete увеличивает счётчик прерванных после записи заголовка.
func (m *CheckoutMetrics) RecordPlacementIncomplete() {
	m.placementIncomplete.Inc()
}

// RecordPlacementDuration записывает время оформления.
func (m *CheckoutMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага оформления.
func (m *CheckoutMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordReservation фиксирует исход обращения к ledger.
func (m *CheckoutMetrics) RecordReservation(outcome string) {
	m.reservations.WithLabelValues(outcome).Inc()
}

// RecordInsufficientStock увеличивает счётчик отказов по остатку.
func (m *CheckoutMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *CheckoutMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CheckoutMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
