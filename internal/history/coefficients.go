package history

import (
	"math"

	"github.com/san-kum/mrsim/internal/dynamo"
)

var (
	sqrt2 = math.Sqrt(2)
	sqrt3 = math.Sqrt(3)
	sqrt5 = math.Sqrt(5)
	sqrt6 = math.Sqrt(6)
)

// Interior and right-boundary weights. Each is a power sum in the interior
// index j or in the history length n.
var (
	alphaInterior = newPowerSum(scaled(4.0/3,
		term{1, 1, 1.5}, term{1, -1, 1.5}, term{-2, 0, 1.5})...)
	alphaLast = newPowerSum(scaled(4.0/3,
		term{1, 1, 1.5}, term{-1, 0, 1.5}, term{1.5, 0, 0.5})...)

	betaInterior = newPowerSum(join(
		scaled(8.0/15, term{1, -2, 2.5}, term{-3, -1, 2.5}, term{3, 0, 2.5}, term{-1, 1, 2.5}),
		scaled(2.0/3, term{-1, -2, 1.5}, term{3, -1, 1.5}, term{-3, 0, 1.5}, term{1, 1, 1.5}),
	)...)
	betaPenultimate = newPowerSum(join(
		scaled(8.0/15, term{-2, 0, 2.5}, term{3, 1, 2.5}, term{-1, 2, 2.5}),
		scaled(2.0/3, term{4, 0, 1.5}, term{-3, 1, 1.5}, term{1, 2, 1.5}),
	)...)
	betaLast = newPowerSum(join(
		scaled(8.0/15, term{1, 0, 2.5}, term{-1, 1, 2.5}),
		scaled(2.0/3, term{-3, 0, 1.5}, term{1, 1, 1.5}),
		[]term{{2, 0, 0.5}},
	)...)

	gammaInterior = newPowerSum(join(
		scaled(16.0/105, term{1, -2, 3.5}, term{1, 2, 3.5}, term{-4, -1, 3.5}, term{-4, 1, 3.5}, term{6, 0, 3.5}),
		scaled(2.0/9, term{4, -1, 1.5}, term{4, 1, 1.5}, term{-1, -2, 1.5}, term{-1, 2, 1.5}, term{-6, 0, 1.5}),
	)...)
	gammaLast3 = newPowerSum(join(
		scaled(16.0/105, term{1, 0, 3.5}, term{-4, 2, 3.5}, term{6, 3, 3.5}, term{-4, 4, 3.5}, term{1, 5, 3.5}),
		[]term{{-8.0 / 15, 0, 2.5}, {4.0 / 9, 0, 1.5}, {8.0 / 9, 2, 1.5}, {-4.0 / 3, 3, 1.5}, {8.0 / 9, 4, 1.5}, {-2.0 / 9, 5, 1.5}},
	)...)
	gammaLast2 = newPowerSum(join(
		scaled(16.0/105, term{1, 4, 3.5}, term{-4, 3, 3.5}, term{6, 2, 3.5}, term{-3, 0, 3.5}),
		[]term{{32.0 / 15, 0, 2.5}, {-2, 0, 1.5}, {-4.0 / 3, 2, 1.5}, {8.0 / 9, 3, 1.5}, {-2.0 / 9, 4, 1.5}},
	)...)
	gammaLast1 = newPowerSum(join(
		scaled(16.0/105, term{3, 0, 3.5}, term{-4, 2, 3.5}, term{1, 3, 3.5}),
		[]term{{-8.0 / 3, 0, 2.5}, {4, 0, 1.5}, {8.0 / 9, 2, 1.5}, {-2.0 / 9, 3, 1.5}},
	)...)
	gammaLast = newPowerSum(join(
		scaled(16.0/105, term{1, 2, 3.5}, term{-1, 0, 3.5}),
		[]term{{16.0 / 15, 0, 2.5}, {-22.0 / 9, 0, 1.5}, {-2.0 / 9, 2, 1.5}, {2, 0, 0.5}},
	)...)
)

// Left-boundary weights of the general second and third order formulas.
// They do not depend on the history length.
var (
	betaHead = [3]float64{
		4.0 / 5 * sqrt2,
		14.0/5*sqrt3 - 12.0/5*sqrt2,
		176.0/15 - 42.0/5*sqrt3 + 12.0/5*sqrt2,
	}
	gammaHead = [4]float64{
		244.0 / 315 * sqrt2,
		362.0/105*sqrt3 - 976.0/315*sqrt2,
		5584.0/315 - 1448.0/105*sqrt3 + 488.0/105*sqrt2,
		1130.0/63*sqrt5 - 22336.0/315 + 724.0/35*sqrt3 - 976.0/315*sqrt2,
	}
)

// Exact weights for histories too short for the general formulas, where the
// left and right boundary stencils would overlap.
var (
	beta2 = []float64{12.0 / 15 * sqrt2, 16.0 / 15 * sqrt2, 2.0 / 15 * sqrt2}
	beta3 = []float64{
		4.0 / 5 * sqrt2,
		14.0/5*sqrt3 - 12.0/5*sqrt2,
		-8.0/5*sqrt3 + 12.0/5*sqrt2,
		4.0/5*sqrt3 - 4.0/5*sqrt2,
	}
	gamma3 = []float64{68.0 / 105 * sqrt3, 6.0 / 7 * sqrt3, 12.0 / 35 * sqrt3, 16.0 / 105 * sqrt3}
	gamma4 = []float64{
		244.0 / 315 * sqrt2,
		1888.0/315 - 976.0/315*sqrt2,
		-656.0/105 + 488.0/105*sqrt2,
		544.0/105 - 976.0/315*sqrt2,
		-292.0/315 + 244.0/315*sqrt2,
	}
	gamma5 = []float64{
		244.0 / 315 * sqrt2,
		362.0/105*sqrt3 - 976.0/315*sqrt2,
		500.0/63*sqrt5 - 1448.0/105*sqrt3 + 488.0/105*sqrt2,
		-290.0/21*sqrt5 + 724.0/35*sqrt3 - 976.0/315*sqrt2,
		220.0/21*sqrt5 - 1448.0/105*sqrt3 + 244.0/315*sqrt2,
		-164.0/63*sqrt5 + 362.0/105*sqrt3,
	}
	gamma6 = []float64{
		244.0 / 315 * sqrt2,
		362.0/105*sqrt3 - 976.0/315*sqrt2,
		5584.0/315 - 1448.0/105*sqrt3 + 488.0/105*sqrt2,
		344.0/21*sqrt6 - 22336.0/315 + 724.0/35*sqrt3 - 976.0/315*sqrt2,
		-1188.0/35*sqrt6 + 11168.0/105 - 1448.0/105*sqrt3 + 244.0/315*sqrt2,
		936.0/35*sqrt6 - 22336.0/315 + 362.0/105*sqrt3,
		-754.0/105*sqrt6 + 5584.0/315,
	}
)

// Coefficients returns the n+1 quadrature weights of the given order for a
// history of n equal steps. Weight j multiplies the j-th most recent state.
//
// Short histories fall back to lower orders: order 2 with n == 1 uses the
// first order weights, order 3 with n == 2 uses the second order weights and
// with n == 1 the first order ones.
//
// The boundary weights depend on n, so the vector cannot be extended from a
// shorter history and must be regenerated whenever n changes.
func Coefficients(n, order int) ([]float64, error) {
	if err := validate(n, order); err != nil {
		return nil, err
	}
	w := make([]float64, n+1)
	if err := fill(w, n, order); err != nil {
		return nil, err
	}
	return w, nil
}

func validate(n, order int) error {
	if order < 1 || order > 3 {
		return dynamo.ErrInvalidOrder
	}
	if n < 1 {
		return dynamo.ErrInvalidLength
	}
	return nil
}

// fill writes the weights into w, which must have length n+1.
func fill(w []float64, n, order int) error {
	switch order {
	case 1:
		alpha(w, n)
	case 2:
		beta(w, n)
	case 3:
		gamma(w, n)
	default:
		return dynamo.ErrInvalidOrder
	}
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.ErrNumericOverflow
		}
	}
	return nil
}

func alpha(w []float64, n int) {
	w[0] = 4.0 / 3
	for j := 1; j < n; j++ {
		w[j] = alphaInterior.eval(float64(j))
	}
	w[n] = alphaLast.eval(float64(n))
}

func beta(w []float64, n int) {
	switch n {
	case 1:
		alpha(w, n)
	case 2:
		copy(w, beta2)
	case 3:
		copy(w, beta3)
	default:
		betaGeneral(w, n)
	}
}

func betaGeneral(w []float64, n int) {
	copy(w, betaHead[:])
	for j := 3; j < n-1; j++ {
		w[j] = betaInterior.eval(float64(j))
	}
	x := float64(n)
	w[n-1] = betaPenultimate.eval(x)
	w[n] = betaLast.eval(x)
}

func gamma(w []float64, n int) {
	switch n {
	case 1, 2:
		beta(w, n)
	case 3:
		copy(w, gamma3)
	case 4:
		copy(w, gamma4)
	case 5:
		copy(w, gamma5)
	case 6:
		copy(w, gamma6)
	default:
		gammaGeneral(w, n)
	}
}

func gammaGeneral(w []float64, n int) {
	copy(w, gammaHead[:])
	for j := 4; j < n-3; j++ {
		w[j] = gammaInterior.eval(float64(j))
	}
	x := float64(n)
	w[n-3] = gammaLast3.eval(x)
	w[n-2] = gammaLast2.eval(x)
	w[n-1] = gammaLast1.eval(x)
	w[n] = gammaLast.eval(x)
}
