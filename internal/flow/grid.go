package flow

import (
	"fmt"
	"math"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Grid is a velocity field sampled on uniform x, y and t axes, together with
// its derivative arrays keyed "d{u|v}/d{x|y|t}". Arrays are flattened with t
// varying fastest: index (i*len(Y)+j)*len(T)+k.
//
// Values between samples are interpolated trilinearly. Points outside the
// axes are out of domain.
type Grid struct {
	X, Y, T []float64
	U, V    []float64
	D       map[string][]float64
}

// GridInfo summarises a grid for display.
type GridInfo struct {
	Shape    [3]int
	XRange   [2]float64
	YRange   [2]float64
	TRange   [2]float64
	Keys     []string
	MaxSpeed float64
}

// Frame is the velocity on the x-y plane at one sampled time.
type Frame struct {
	Index int
	T     float64
	U, V  [][]float64
}

// DefaultAxes returns x, y ∈ [-2, 2] with 40 samples and t ∈ [0, 2] with 20.
func DefaultAxes() (xs, ys, ts []float64) {
	return floats.Span(make([]float64, 40), -2, 2),
		floats.Span(make([]float64, 40), -2, 2),
		floats.Span(make([]float64, 20), 0, 2)
}

func (g *Grid) Shape() (nx, ny, nt int) {
	return len(g.X), len(g.Y), len(g.T)
}

func (g *Grid) index(i, j, k int) int {
	return (i*len(g.Y)+j)*len(g.T) + k
}

// Validate checks axes and array sizes.
func (g *Grid) Validate() error {
	for _, ax := range []struct {
		name string
		v    []float64
	}{{"x", g.X}, {"y", g.Y}, {"t", g.T}} {
		if err := checkAxis(ax.v); err != nil {
			return fmt.Errorf("grid axis %s: %w", ax.name, err)
		}
	}
	size := len(g.X) * len(g.Y) * len(g.T)
	if len(g.U) != size || len(g.V) != size {
		return fmt.Errorf("grid velocity arrays have %d/%d values, want %d: %w", len(g.U), len(g.V), size, dynamo.ErrInvalidLength)
	}
	for _, k := range DerivativeKeys {
		if len(g.D[k]) != size {
			return fmt.Errorf("grid derivative %s has %d values, want %d: %w", k, len(g.D[k]), size, dynamo.ErrInvalidLength)
		}
	}
	return nil
}

func checkAxis(v []float64) error {
	if len(v) < 3 {
		return fmt.Errorf("need at least 3 samples, got %d: %w", len(v), dynamo.ErrInvalidLength)
	}
	h := v[1] - v[0]
	if !(h > 0) {
		return dynamo.ErrNonUniformGrid
	}
	for i := 2; i < len(v); i++ {
		if math.Abs(v[i]-v[i-1]-h) > 1e-6*h {
			return dynamo.ErrNonUniformGrid
		}
	}
	return nil
}

// cell locates v on a uniform axis and returns the lower index and the
// fractional position within the cell.
func cell(axis []float64, v float64) (int, float64, bool) {
	n := len(axis)
	if v < axis[0] || v > axis[n-1] || math.IsNaN(v) {
		return 0, 0, false
	}
	h := (axis[n-1] - axis[0]) / float64(n-1)
	i := int((v - axis[0]) / h)
	if i > n-2 {
		i = n - 2
	}
	f := (v - axis[i]) / (axis[i+1] - axis[i])
	return i, math.Min(math.Max(f, 0), 1), true
}

type stencil struct {
	i, j, k    int
	fx, fy, ft float64
}

func (g *Grid) locate(x, y, t float64) (stencil, error) {
	i, fx, okx := cell(g.X, x)
	j, fy, oky := cell(g.Y, y)
	k, ft, okt := cell(g.T, t)
	if !okx || !oky || !okt {
		return stencil{}, outOfDomain(x, y, t)
	}
	return stencil{i, j, k, fx, fy, ft}, nil
}

func (g *Grid) interp(a []float64, s stencil) float64 {
	v := 0.0
	for di := 0; di < 2; di++ {
		wx := 1 - s.fx
		if di == 1 {
			wx = s.fx
		}
		for dj := 0; dj < 2; dj++ {
			wy := 1 - s.fy
			if dj == 1 {
				wy = s.fy
			}
			base := g.index(s.i+di, s.j+dj, s.k)
			v += wx * wy * ((1-s.ft)*a[base] + s.ft*a[base+1])
		}
	}
	return v
}

func (g *Grid) Evaluate(x, y, t float64) (r2.Vec, error) {
	s, err := g.locate(x, y, t)
	if err != nil {
		return r2.Vec{}, err
	}
	return r2.Vec{X: g.interp(g.U, s), Y: g.interp(g.V, s)}, nil
}

func (g *Grid) Derivatives(x, y, t float64) (Derivatives, error) {
	s, err := g.locate(x, y, t)
	if err != nil {
		return Derivatives{}, err
	}
	return Derivatives{
		DuDx: g.interp(g.D["du/dx"], s),
		DuDy: g.interp(g.D["du/dy"], s),
		DuDt: g.interp(g.D["du/dt"], s),
		DvDx: g.interp(g.D["dv/dx"], s),
		DvDy: g.interp(g.D["dv/dy"], s),
		DvDt: g.interp(g.D["dv/dt"], s),
	}, nil
}

func (g *Grid) Info() GridInfo {
	nx, ny, nt := g.Shape()
	info := GridInfo{
		Shape:  [3]int{nx, ny, nt},
		XRange: [2]float64{g.X[0], g.X[nx-1]},
		YRange: [2]float64{g.Y[0], g.Y[ny-1]},
		TRange: [2]float64{g.T[0], g.T[nt-1]},
		Keys:   append([]string{"u", "v"}, DerivativeKeys...),
	}
	for i := range g.U {
		info.MaxSpeed = math.Max(info.MaxSpeed, math.Hypot(g.U[i], g.V[i]))
	}
	return info
}

// Snapshot returns the velocity frame at time index k.
func (g *Grid) Snapshot(k int) (Frame, error) {
	nx, ny, nt := g.Shape()
	if k < 0 || k >= nt {
		return Frame{}, fmt.Errorf("snapshot %d of %d: %w", k, nt, dynamo.ErrOutOfDomain)
	}
	f := Frame{Index: k, T: g.T[k], U: make([][]float64, nx), V: make([][]float64, nx)}
	for i := 0; i < nx; i++ {
		f.U[i] = make([]float64, ny)
		f.V[i] = make([]float64, ny)
		for j := 0; j < ny; j++ {
			f.U[i][j] = g.U[g.index(i, j, k)]
			f.V[i][j] = g.V[g.index(i, j, k)]
		}
	}
	return f, nil
}

// Mesh returns the x and y coordinates of every grid node, indexed [i][j].
func (g *Grid) Mesh() (xx, yy [][]float64) {
	xx = make([][]float64, len(g.X))
	yy = make([][]float64, len(g.X))
	for i, x := range g.X {
		xx[i] = make([]float64, len(g.Y))
		yy[i] = make([]float64, len(g.Y))
		for j, y := range g.Y {
			xx[i][j] = x
			yy[i][j] = y
		}
	}
	return xx, yy
}
