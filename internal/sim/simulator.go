package sim

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Simulator runs single particle releases through one flow with fixed
// parameters and collects metrics along the way.
type Simulator struct {
	field     flow.Field
	params    config.Dimensionless
	order     int
	metrics   []Metric
	observers []Observer
	log       *logrus.Entry
}

func New(f flow.Field, p config.Dimensionless, order int) *Simulator {
	return &Simulator{
		field:     f,
		params:    p,
		order:     order,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logrus.WithField("component", "sim"),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() config.Dimensionless { return s.params }
func (s *Simulator) Order() int                   { return s.order }

// Run advances a particle from rel until the stepper terminates, fails or
// ctx is cancelled between steps. The result is returned in every case
// except an invalid release; its Err matches the returned error.
func (s *Simulator) Run(ctx context.Context, rel Release) (*Result, error) {
	stepper, err := NewStepper(s.field, s.params, s.order, rel.Position, rel.Slip)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"order":  s.order,
		"params": s.params.String(),
	})
	if st := s.params.Stiffness(); st > 1 {
		log.WithField("stiffness", st).Warn("dt·R/S exceeds 1, explicit stepping is likely unstable")
	}
	log.Info("run started")

	for _, m := range s.metrics {
		m.Reset()
	}
	s.notify(stepper.State())

	started := time.Now()
	for stepper.Phase() == Stepping {
		select {
		case <-ctx.Done():
			stepper.Stop()
			err = ctx.Err()
		default:
		}
		if err != nil {
			break
		}

		t0 := time.Now()
		state, stepErr := stepper.Advance()
		if stepErr != nil {
			err = stepErr
			telemetry.ObserveFailure(cause(stepErr))
			log.WithFields(logrus.Fields{
				"step": stepper.Steps() + 1,
				"time": stepper.State().Time,
				"err":  stepErr,
			}).Error("step failed")
			break
		}
		telemetry.ObserveStep(time.Since(t0), stepper.Steps()+1)
		s.notify(state)
	}

	result := &Result{
		Trajectory: stepper.Trajectory(),
		Final:      stepper.State(),
		Phase:      stepper.Phase(),
		Metrics:    make(map[string]float64, len(s.metrics)),
		Err:        err,
		Elapsed:    time.Since(started),
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	telemetry.ObserveRun(result.Phase.String())

	log.WithFields(logrus.Fields{
		"steps":   result.Trajectory.Steps(),
		"state":   result.Phase,
		"elapsed": result.Elapsed,
	}).Info("run finished")
	return result, err
}

func (s *Simulator) notify(state dynamo.ParticleState) {
	for _, m := range s.metrics {
		m.Observe(state)
	}
	for _, o := range s.observers {
		o.OnStep(state)
	}
}

func cause(err error) string {
	switch {
	case errors.Is(err, dynamo.ErrOutOfDomain):
		return "out_of_domain"
	case errors.Is(err, dynamo.ErrNumericOverflow):
		return "numeric_overflow"
	case errors.Is(err, dynamo.ErrNonUniformGrid):
		return "non_uniform_grid"
	}
	return "other"
}
