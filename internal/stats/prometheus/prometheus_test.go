package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/discochess/evalbar/internal/stats"
)

// gather returns the named metric family from reg, or nil.
func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c.registry == nil {
		t.Error("registry should not be nil")
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricEngineSpawns, 2)
	c.IncCounter(stats.MetricEngineSpawns, 3)

	mf := gather(t, reg, stats.MetricEngineSpawns)
	if mf == nil {
		t.Fatalf("%s not registered", stats.MetricEngineSpawns)
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 5 {
		t.Errorf("counter value = %v, want 5", got)
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge(stats.MetricDepth, 12)
	c.SetGauge(stats.MetricDepth, 31)

	mf := gather(t, reg, stats.MetricDepth)
	if mf == nil {
		t.Fatalf("%s not registered", stats.MetricDepth)
	}
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 31 {
		t.Errorf("gauge value = %v, want 31", got)
	}
}

func TestCollector_ObserveHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	for _, v := range []float64{0.2, 1.5, 4} {
		c.ObserveHistogram(stats.MetricSearchTime, v)
	}

	mf := gather(t, reg, stats.MetricSearchTime)
	if mf == nil {
		t.Fatalf("%s not registered", stats.MetricSearchTime)
	}
	if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("histogram count = %v, want 3", got)
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: stats.MetricEngineFaults,
		Help: stats.MetricEngineFaults,
	})
	reg.MustRegister(existing)
	existing.Add(10)

	c := New(reg)
	c.IncCounter(stats.MetricEngineFaults, 1)

	mf := gather(t, reg, stats.MetricEngineFaults)
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 11 {
		t.Errorf("counter value = %v, want 11", got)
	}
}

func TestCollector_RegistrationConflictIsLogged(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evalbar_x",
		Help: "registered elsewhere",
	}))

	core, logs := observer.New(zap.WarnLevel)
	c := New(reg, WithLogger(zap.New(core)))
	c.IncCounter("evalbar_x", 5)
	c.IncCounter("evalbar_x", 1)

	entries := logs.FilterField(zap.String("metric", "evalbar_x")).All()
	if len(entries) != 1 {
		t.Fatalf("logged %d warnings, want 1 per rejected metric", len(entries))
	}
	if entries[0].ContextMap()["error"] == nil {
		t.Error("warning should carry the registration error")
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.IncCounter(stats.MetricInfoRecords, 1)
				c.SetGauge(stats.MetricDepth, int64(j))
			}
		}()
	}
	wg.Wait()

	mf := gather(t, reg, stats.MetricInfoRecords)
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 400 {
		t.Errorf("counter value = %v, want 400", got)
	}
}
