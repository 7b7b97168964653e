// Package telemetry exposes run statistics as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "mrsim"

// Registry holds every collector of this package. It is separate from the
// default registry so tests can gather it without process metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	StepsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "steps_total",
		Help:      "Particle steps advanced successfully.",
	})

	FailuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "step_failures_total",
		Help:      "Particle steps that failed, by cause.",
	}, []string{"cause"})

	RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Finished runs, by final stepper state.",
	}, []string{"state"})

	HistoryLength = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "history_length",
		Help:      "Samples in the most recently advanced slip history.",
	})

	StepDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "step_duration_seconds",
		Help:      "Wall time of one particle step.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
)

// ObserveStep records one successful step over a history of n samples.
func ObserveStep(elapsed time.Duration, n int) {
	StepsTotal.Inc()
	HistoryLength.Set(float64(n))
	StepDuration.Observe(elapsed.Seconds())
}

// ObserveFailure records a failed step.
func ObserveFailure(cause string) {
	FailuresTotal.WithLabelValues(cause).Inc()
}

// ObserveRun records a finished run.
func ObserveRun(state string) {
	RunsTotal.WithLabelValues(state).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logrus.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
