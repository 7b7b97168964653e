package flow

import (
	"fmt"
	"sync"

	"github.com/san-kum/mrsim/internal/dynamo"
)

// Generate samples f on the given axes and differentiates the samples
// numerically: second order central differences inside, second order
// one-sided differences on the edges, along x, y and t alike.
//
// Time slices are sampled concurrently; f must be safe for concurrent use,
// which every Field in this package is.
func Generate(f Field, xs, ys, ts []float64) (*Grid, error) {
	g := &Grid{
		X: append([]float64(nil), xs...),
		Y: append([]float64(nil), ys...),
		T: append([]float64(nil), ts...),
	}
	for name, ax := range map[string][]float64{"x": g.X, "y": g.Y, "t": g.T} {
		if err := checkAxis(ax); err != nil {
			return nil, fmt.Errorf("axis %s: %w", name, err)
		}
	}

	nx, ny, nt := g.Shape()
	size := nx * ny * nt
	g.U = make([]float64, size)
	g.V = make([]float64, size)
	g.D = make(map[string][]float64, len(DerivativeKeys))
	for _, k := range DerivativeKeys {
		g.D[k] = make([]float64, size)
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	dynamo.ParallelFor(nt, 1, func(start, end int) {
		for k := start; k < end; k++ {
			for i := 0; i < nx; i++ {
				for j := 0; j < ny; j++ {
					u, err := f.Evaluate(g.X[i], g.Y[j], g.T[k])
					if err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						return
					}
					idx := g.index(i, j, k)
					g.U[idx], g.V[idx] = u.X, u.Y
				}
			}
		}
	})
	if firstErr != nil {
		return nil, fmt.Errorf("sampling flow: %w", firstErr)
	}

	hx := g.X[1] - g.X[0]
	hy := g.Y[1] - g.Y[0]
	ht := g.T[1] - g.T[0]
	for _, comp := range []struct {
		name string
		a    []float64
	}{{"u", g.U}, {"v", g.V}} {
		// x derivative: stride ny*nt
		for j := 0; j < ny; j++ {
			for k := 0; k < nt; k++ {
				gradient(comp.a, g.D["d"+comp.name+"/dx"], g.index(0, j, k), ny*nt, nx, hx)
			}
		}
		for i := 0; i < nx; i++ {
			for k := 0; k < nt; k++ {
				gradient(comp.a, g.D["d"+comp.name+"/dy"], g.index(i, 0, k), nt, ny, hy)
			}
			for j := 0; j < ny; j++ {
				gradient(comp.a, g.D["d"+comp.name+"/dt"], g.index(i, j, 0), 1, nt, ht)
			}
		}
	}
	return g, nil
}

// gradient differentiates the n values of src starting at offset with the
// given stride and spacing h, writing into dst at the same positions.
func gradient(src, dst []float64, offset, stride, n int, h float64) {
	at := func(i int) float64 { return src[offset+i*stride] }
	set := func(i int, v float64) { dst[offset+i*stride] = v }

	set(0, (-3*at(0)+4*at(1)-at(2))/(2*h))
	for i := 1; i < n-1; i++ {
		set(i, (at(i+1)-at(i-1))/(2*h))
	}
	set(n-1, (3*at(n-1)-4*at(n-2)+at(n-3))/(2*h))
}
