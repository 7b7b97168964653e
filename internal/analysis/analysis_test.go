package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestExactSineHistory(t *testing.T) {
	if got := ExactSineHistory(0); got != 0 {
		t.Errorf("ExactSineHistory(0) = %v, want 0", got)
	}
	// For small t, sin τ ≈ τ gives ∫ τ/sqrt(t-τ) dτ = (4/3) t^{3/2}.
	tm := 1e-3
	want := 4.0 / 3 * math.Pow(tm, 1.5)
	if got := ExactSineHistory(tm); math.Abs(got-want) > 1e-9 {
		t.Errorf("ExactSineHistory(%v) = %v, want %v", tm, got, want)
	}
}

func TestConvergenceRates(t *testing.T) {
	rows, err := Convergence([]int{1, 2}, []int{41, 81, 161}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	for _, r := range rows {
		if r.MaxError <= 0 || math.IsNaN(r.MaxError) {
			t.Errorf("order %d, %d points: max error %v", r.Order, r.Points, r.MaxError)
		}
	}
	if !math.IsNaN(rows[0].Rate) {
		t.Errorf("first row rate = %v, want NaN", rows[0].Rate)
	}
	// Errors shrink with refinement and the second order scheme is more
	// accurate on the finest grid.
	if rows[2].MaxError >= rows[0].MaxError {
		t.Errorf("order 1 did not converge: %v -> %v", rows[0].MaxError, rows[2].MaxError)
	}
	if rows[5].MaxError >= rows[2].MaxError {
		t.Errorf("order 2 error %v not below order 1 error %v", rows[5].MaxError, rows[2].MaxError)
	}
	if rows[5].Rate < 1.2 {
		t.Errorf("order 2 rate = %v, want above 1.2", rows[5].Rate)
	}
}

func TestConvergenceErrors(t *testing.T) {
	if _, err := Convergence([]int{1}, []int{11}, 0); err == nil {
		t.Error("expected error for zero span")
	}
	if _, err := Convergence([]int{1}, []int{1}, 1); err == nil {
		t.Error("expected error for a single point")
	}
	if _, err := Convergence([]int{5}, []int{11}, 1); err == nil {
		t.Error("expected error for order 5")
	}
}

func TestPowerSpectrum(t *testing.T) {
	const n = 256
	dt := 1.0 / n
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 8 * float64(i) * dt)
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("spectrum length = %d, want %d", len(ps), n/2)
	}
	if math.Abs(ps[8]-n/2) > 1e-6 {
		t.Errorf("peak magnitude = %v, want %v", ps[8], n/2)
	}
	if f := DominantFrequency(data, dt); math.Abs(f-8) > 1e-9 {
		t.Errorf("dominant frequency = %v, want 8", f)
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil spectrum for one sample")
	}
}

func circle(t *testing.T, n int, dt float64) *dynamo.Trajectory {
	t.Helper()
	states := make([]dynamo.ParticleState, n)
	for i := range states {
		tm := float64(i) * dt
		states[i] = dynamo.ParticleState{
			Time:     tm,
			Position: r2.Vec{X: math.Cos(2 * math.Pi * tm), Y: math.Sin(2 * math.Pi * tm)},
		}
	}
	traj, err := dynamo.NewTrajectoryFrom(states)
	if err != nil {
		t.Fatal(err)
	}
	return traj
}

func TestPortraitASCII(t *testing.T) {
	p, err := NewPortrait(circle(t, 200, 0.005), "x", "y")
	if err != nil {
		t.Fatal(err)
	}
	out := p.ASCII(40, 20)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	if !strings.Contains(out, "•") || !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Errorf("portrait missing points or axes:\n%s", out)
	}

	if _, err := NewPortrait(circle(t, 2, 0.1), "x", "z"); err == nil {
		t.Error("expected error for unknown column")
	}
	if (&Portrait{}).ASCII(10, 10) != "" {
		t.Error("empty portrait should render empty")
	}
}

func TestStroboscopic(t *testing.T) {
	// One revolution per unit time returns to (1, 0) each period.
	p, err := Stroboscopic(circle(t, 401, 0.01), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Points) != 5 {
		t.Fatalf("got %d section points, want 5", len(p.Points))
	}
	for _, pt := range p.Points {
		if r2.Norm(r2.Sub(pt, r2.Vec{X: 1})) > 1e-6 {
			t.Errorf("section point %v, want (1, 0)", pt)
		}
	}

	if _, err := Stroboscopic(circle(t, 2, 0.1), 0); err == nil {
		t.Error("expected error for zero period")
	}
}
