// Package history evaluates the singular convolution behind the Basset
// history force,
//
//	I(t) = ∫₀ᵗ w(τ) / sqrt(t-τ) dτ,
//
// on an equally spaced time grid.
//
// [Coefficients] returns closed-form quadrature weights of first, second or
// third order accuracy (Daitsche 2013). They come from integrating the exact
// antiderivative of (t-τ)^(-1/2) against a piecewise linear, quadratic or
// cubic reconstruction of w. Every weight is a direct formula; no numerical
// quadrature is involved, so the weights are reproducible bit for bit.
//
// [Integrate] and [IntegrateVec] apply the weights to a full history.
//
// # Numerics
//
// The interior weight of order k is a k+1 point difference of (j±m)^(k+1/2)
// terms and the right boundary weights are differences of n^(k+1/2) terms.
// For long histories those terms are many orders of magnitude larger than
// their sum, and evaluating them as written loses most significant digits
// (a single third order weight at n = 10⁴ is off by tens of percent). Each
// formula is therefore stored as a power sum and, above a fixed argument,
// evaluated through its binomial series in 1/x, in which the large
// cancelling terms are removed analytically. The weights sum to 2·sqrt(n)
// to near machine precision for any n.
//
// # Cost
//
// The weight vector depends on the history length at both ends and has to
// be regenerated for every length. One evaluation is O(n); integrating over
// a run of n steps is O(n²). This is a property of the scheme, not something
// the package tries to hide with truncation.
package history
