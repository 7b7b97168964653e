// Package flow supplies fluid velocity fields to the particle integrator.
//
// A [Field] answers velocity and first derivative queries at a point in
// space and time. Closed-form fields ([Zero], [Uniform], [Vortex], [Blink])
// provide exact derivatives; [Func] wraps an arbitrary velocity function and
// differentiates it numerically; [Grid] interpolates a sampled field and is
// the only field with a bounded domain.
//
// Grids are built with [Generate] and persisted with [SaveGrid] and
// [LoadGrid].
package flow
