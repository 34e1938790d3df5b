// Package metric provides prometheus instrumentation for the validation
// and reasoning core.
package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/semgraph/errors"
)

// Registry manages the registration and lifecycle of metrics.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registered         map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewRegistry creates a registry with the core metrics and Go runtime
// collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		Metrics:            NewMetrics(),
		registered:         make(map[string]prometheus.Collector),
	}

	for _, c := range r.Metrics.collectors() {
		r.prometheusRegistry.MustRegister(c)
	}
	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying prometheus registry for
// exposition by the caller.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Register adds a caller-defined collector under a unique name.
func (r *Registry) Register(name string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registered[name]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("collector %s already registered", name),
			"Registry", "Register", "duplicate registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "Registry", "Register", "duplicate registration")
		}
		return errors.WrapFatal(err, "Registry", "Register", "prometheus registration")
	}

	r.registered[name] = collector
	return nil
}

// Unregister removes a caller-defined collector. Returns false when the
// name is unknown.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	collector, exists := r.registered[name]
	if !exists {
		return false
	}
	delete(r.registered, name)
	return r.prometheusRegistry.Unregister(collector)
}
