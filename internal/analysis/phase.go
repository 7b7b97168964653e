package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Portrait holds two trajectory columns plotted against each other.
type Portrait struct {
	XName, YName string
	Points       []r2.Vec
}

// NewPortrait pairs the named columns of traj, e.g. "x" against "wx".
func NewPortrait(traj *dynamo.Trajectory, xName, yName string) (*Portrait, error) {
	xs, ok := traj.Column(xName)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", xName)
	}
	ys, ok := traj.Column(yName)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", yName)
	}
	p := &Portrait{XName: xName, YName: yName, Points: make([]r2.Vec, len(xs))}
	for i := range xs {
		p.Points[i] = r2.Vec{X: xs[i], Y: ys[i]}
	}
	return p, nil
}

// Stroboscopic samples the particle position once per flow period, at the
// first state on or after each multiple of period. For a periodic flow the
// result is a Poincaré section of the particle path.
func Stroboscopic(traj *dynamo.Trajectory, period float64) (*Portrait, error) {
	if !(period > 0) {
		return nil, fmt.Errorf("period must be positive, got %g: %w", period, dynamo.ErrParameterBounds)
	}
	p := &Portrait{XName: "x", YName: "y"}
	t0 := traj.First().Time
	next := 0.0
	for i := 0; i < traj.Len(); i++ {
		s := traj.At(i)
		// Small slack keeps accumulated step error from skipping a period.
		if s.Time-t0 >= next-1e-9*period {
			p.Points = append(p.Points, s.Position)
			next = (math.Floor((s.Time-t0)/period+1e-9) + 1) * period
		}
	}
	return p, nil
}

// ASCII draws the portrait on a width by height character canvas with axes
// where they cross the visible area.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
