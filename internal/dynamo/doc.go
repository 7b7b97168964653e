// Package dynamo provides the core types shared by every stage of an inertial
// particle integration.
//
// The package defines the values that flow between the history integrator,
// the kernels and the stepper:
//
//   - [ParticleState]: position, slip velocity and time of one particle
//   - [Trajectory]: append-only log of particle states, index 0 is the release
//   - [StepError]: wraps a failure with the step it happened on
//
// Slip velocity is the particle velocity minus the local fluid velocity.
//
// # Errors
//
// All failures of the integrator are reported through the sentinel errors in
// this package ([ErrInvalidOrder], [ErrInvalidLength], [ErrNonUniformGrid],
// [ErrOutOfDomain], [ErrNumericOverflow]) so callers can test them with
// errors.Is regardless of which layer wrapped them.
//
// # Thread Safety
//
// A Trajectory has exactly one writer, the stepper that owns it. Readers get
// copies, so a snapshot handed to an observer never changes underneath it.
// Independent trajectories share nothing and can be built concurrently.
package dynamo
