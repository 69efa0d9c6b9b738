package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/assignment"
)

// SimulationMetricsCollector turns tick reports into Prometheus metrics.
// It is a simulation.ReportSink.
type SimulationMetricsCollector struct {
	// Tick metrics
	ticksTotal   prometheus.Counter
	tickDuration prometheus.Histogram
	eventsTotal  *prometheus.CounterVec

	// Street graph metrics
	streetNodes    prometheus.Gauge
	pendingStreets prometheus.Gauge

	// Population metrics
	spawnedTotal prometheus.Counter
	population   prometheus.Gauge
	employed     prometheus.Gauge
	matchesTotal *prometheus.CounterVec
	waiting      *prometheus.GaugeVec
	freeCapacity *prometheus.GaugeVec

	// Power metrics
	powerMissing  prometheus.Gauge
	powerCapacity prometheus.Gauge
	powerDrawn    prometheus.Gauge
	uncovered     prometheus.Gauge
}

// NewSimulationMetricsCollector creates the collector; an empty namespace
// uses DefaultNamespace
func NewSimulationMetricsCollector(namespace string) *SimulationMetricsCollector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}

	return &SimulationMetricsCollector{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of completed ticks",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tick_duration_seconds",
			Help:      "Tick processing duration distribution",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_total",
				Help:      "Inbound building events by outcome",
			},
			[]string{"outcome"},
		),

		streetNodes:    gauge("street_nodes", "Street nodes linked into the graph"),
		pendingStreets: gauge("pending_streets", "Streets waiting for a connected neighbour"),

		spawnedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inhabitants_spawned_total",
			Help:      "Total number of newcomers introduced",
		}),
		population: gauge("population", "Inhabitants living in houses"),
		employed:   gauge("employed", "Inhabitants with a workplace"),
		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matches_total",
				Help:      "Proposed matches by pipeline and outcome",
			},
			[]string{"pipeline", "outcome"},
		),
		waiting: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "waiting_inhabitants",
				Help:      "Inhabitants waiting in a pipeline",
			},
			[]string{"pipeline"},
		),
		freeCapacity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "free_capacity",
				Help:      "Unclaimed places offered to a pipeline",
			},
			[]string{"pipeline"},
		),

		powerMissing:  gauge("power_missing_wh", "Power requested by uncovered consumers"),
		powerCapacity: gauge("power_capacity_wh", "Total producer capacity"),
		powerDrawn:    gauge("power_drawn_wh", "Power drawn from producers"),
		uncovered:     gauge("uncovered_consumers", "Consumers without full coverage"),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}
	return c.RegisterWith(Registry)
}

// RegisterWith registers all simulation metrics with reg
func (c *SimulationMetricsCollector) RegisterWith(reg prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.ticksTotal,
		c.tickDuration,
		c.eventsTotal,
		c.streetNodes,
		c.pendingStreets,
		c.spawnedTotal,
		c.population,
		c.employed,
		c.matchesTotal,
		c.waiting,
		c.freeCapacity,
		c.powerMissing,
		c.powerCapacity,
		c.powerDrawn,
		c.uncovered,
	}

	for _, metric := range metrics {
		if err := reg.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Publish records one tick report
func (c *SimulationMetricsCollector) Publish(_ context.Context, report *simulation.TickReport) error {
	c.RecordTick(report)
	return nil
}

// RecordTick records one tick report
func (c *SimulationMetricsCollector) RecordTick(report *simulation.TickReport) {
	c.ticksTotal.Inc()
	c.tickDuration.Observe(report.Duration.Seconds())
	c.eventsTotal.WithLabelValues("applied").Add(float64(report.EventsApplied))
	c.eventsTotal.WithLabelValues("rejected").Add(float64(report.EventsRejected))

	c.streetNodes.Set(float64(report.StreetNodes))
	c.pendingStreets.Set(float64(report.PendingStreets))

	c.spawnedTotal.Add(float64(report.Spawned))
	c.population.Set(float64(report.Population))
	c.employed.Set(float64(report.Employed))
	c.recordPipeline(assignment.KindHousing, report.Housing)
	c.recordPipeline(assignment.KindEmployment, report.Employment)

	c.powerMissing.Set(float64(report.Power.MissingWh))
	c.powerCapacity.Set(float64(report.Power.CapacityWh))
	c.powerDrawn.Set(float64(report.Power.DrawnWh))
	c.uncovered.Set(float64(report.Power.Uncovered))
}

func (c *SimulationMetricsCollector) recordPipeline(kind assignment.Kind, p simulation.PipelineReport) {
	label := pipelineLabel(kind)
	c.matchesTotal.WithLabelValues(label, "confirmed").Add(float64(len(p.Confirmed)))
	c.matchesTotal.WithLabelValues(label, "resigned").Add(float64(len(p.Resigned)))
	c.waiting.WithLabelValues(label).Set(float64(p.Stats.Pending))
	c.freeCapacity.WithLabelValues(label).Set(float64(p.Stats.FreeCapacity))
}

func pipelineLabel(kind assignment.Kind) string {
	if kind == assignment.KindEmployment {
		return "employment"
	}
	return "housing"
}
