package history

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/mrsim/internal/dynamo"
)

func TestCoefficientsLength(t *testing.T) {
	sizes := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 23, 24, 25, 100, 1000, 10000}
	for order := 1; order <= 3; order++ {
		for _, n := range sizes {
			w, err := Coefficients(n, order)
			if err != nil {
				t.Fatalf("order %d n %d: unexpected error %v", order, n, err)
			}
			if len(w) != n+1 {
				t.Errorf("order %d n %d: got length %d, want %d", order, n, len(w), n+1)
			}
			for j, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("order %d n %d: weight %d is %v", order, n, j, v)
				}
			}
		}
	}
}

func TestCoefficientsErrors(t *testing.T) {
	tests := []struct {
		name     string
		n, order int
		want     error
	}{
		{"order zero", 5, 0, dynamo.ErrInvalidOrder},
		{"order four", 5, 4, dynamo.ErrInvalidOrder},
		{"negative order", 5, -1, dynamo.ErrInvalidOrder},
		{"empty history order 1", 0, 1, dynamo.ErrInvalidLength},
		{"empty history order 2", 0, 2, dynamo.ErrInvalidLength},
		{"negative length order 3", -3, 3, dynamo.ErrInvalidLength},
		{"bad order wins", 0, 7, dynamo.ErrInvalidOrder},
	}

	for _, tt := range tests {
		w, err := Coefficients(tt.n, tt.order)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
		if w != nil {
			t.Errorf("%s: expected nil weights on error", tt.name)
		}
	}
}

func TestCoefficientsSumToTwoRootN(t *testing.T) {
	sizes := []int{1, 2, 3, 4, 5, 6, 7, 8, 12, 24, 25, 100, 1000, 10000, 100000}
	for order := 1; order <= 3; order++ {
		for _, n := range sizes {
			w, err := Coefficients(n, order)
			if err != nil {
				t.Fatal(err)
			}
			sum := 0.0
			for _, v := range w {
				sum += v
			}
			want := 2 * math.Sqrt(float64(n))
			if rel := math.Abs(sum/want - 1); rel > 1e-10 {
				t.Errorf("order %d n %d: sum got %.15g, want %.15g (rel %.2e)", order, n, sum, want, rel)
			}
		}
	}
}

func TestCoefficientsShortHistoryFallback(t *testing.T) {
	tests := []struct {
		n, order, fallback int
	}{
		{1, 2, 1},
		{1, 3, 1},
		{2, 3, 2},
	}

	for _, tt := range tests {
		got, _ := Coefficients(tt.n, tt.order)
		want, _ := Coefficients(tt.n, tt.fallback)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order %d n %d differs from order %d (-want +got):\n%s", tt.order, tt.n, tt.fallback, diff)
		}
	}
}

func TestCoefficientsKnownValues(t *testing.T) {
	tests := []struct {
		n, order int
		want     []float64
	}{
		{1, 1, []float64{4.0 / 3, 2.0 / 3}},
		{2, 2, []float64{1.13137, 1.50849, 0.18856}},
		{4, 2, []float64{1.13137, 1.45563, 0.57822, 0.61786, 0.21692}},
		{6, 3, []float64{1.09545, 1.58963, 0.41390, 0.66393, 0.42887, 0.56987, 0.13731}},
		{7, 3, []float64{1.09545, 1.58963, 0.41390, 0.64621, 0.51608, 0.38190, 0.52132, 0.12701}},
	}

	for _, tt := range tests {
		got, err := Coefficients(tt.n, tt.order)
		if err != nil {
			t.Fatal(err)
		}
		for j := range tt.want {
			if math.Abs(got[j]-tt.want[j]) > 1e-5 {
				t.Errorf("order %d n %d weight %d: got %.6f, want %.6f", tt.order, tt.n, j, got[j], tt.want[j])
			}
		}
	}
}

// The exact short-history tables and the general formulas agree on every
// entry except the one where their left and right stencils overlap.
func TestCoefficientsThresholdContinuity(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		table   func([]float64, int)
		general func([]float64, int)
		overlap int
	}{
		{"second order n=3", 3, beta, betaGeneral, 2},
		{"third order n=6", 6, gamma, gammaGeneral, 3},
	}

	for _, tt := range tests {
		lit := make([]float64, tt.n+1)
		gen := make([]float64, tt.n+1)
		tt.table(lit, tt.n)
		tt.general(gen, tt.n)
		for j := range lit {
			if j == tt.overlap {
				continue
			}
			if d := math.Abs(lit[j] - gen[j]); d > 1e-9 {
				t.Errorf("%s weight %d: table %.15g, general %.15g", tt.name, j, lit[j], gen[j])
			}
		}
	}
}

func TestCoefficientsInteriorDecay(t *testing.T) {
	const n = 1000
	for order := 1; order <= 3; order++ {
		w, _ := Coefficients(n, order)
		for j := 5; j <= n-5; j++ {
			if got := w[j] * math.Sqrt(float64(j)); math.Abs(got-1) > 5e-3 {
				t.Fatalf("order %d weight %d: w·sqrt(j) got %.6f, want ~1", order, j, got)
			}
		}
	}
}

func TestCoefficientsIdempotent(t *testing.T) {
	for order := 1; order <= 3; order++ {
		for _, n := range []int{1, 3, 7, 50, 4096} {
			a, _ := Coefficients(n, order)
			b, _ := Coefficients(n, order)
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("order %d n %d: repeated call differs:\n%s", order, n, diff)
			}
		}
	}
}

func TestPowerSumLeadingTermsCancel(t *testing.T) {
	sums := map[string]*powerSum{
		"alphaInterior": alphaInterior, "alphaLast": alphaLast,
		"betaInterior": betaInterior, "betaPenultimate": betaPenultimate, "betaLast": betaLast,
		"gammaInterior": gammaInterior, "gammaLast3": gammaLast3, "gammaLast2": gammaLast2,
		"gammaLast1": gammaLast1, "gammaLast": gammaLast,
	}

	for name, p := range sums {
		for r, c := range p.lead {
			if math.Abs(c) > 1e-9 {
				t.Errorf("%s: coefficient of x^%d got %g, want 0", name, len(p.lead)-r, c)
			}
		}
		for _, x := range []float64{seriesThreshold, 30, 48} {
			d, s := p.direct(x), p.asymptotic(x)
			if rel := math.Abs(d-s) / math.Abs(s); rel > 1e-8 {
				t.Errorf("%s at %v: direct %.15g, series %.15g", name, x, d, s)
			}
		}
	}
}

func BenchmarkCoefficients(b *testing.B) {
	for _, order := range []int{1, 2, 3} {
		b.Run(fmt.Sprintf("order%d", order), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Coefficients(10000, order)
			}
		})
	}
}
