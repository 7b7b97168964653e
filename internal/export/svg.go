package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/mrsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

// CanvasToSVG draws every set dot of a Braille canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00a8cc">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds returns the box around every path, padded by a tenth of its span.
func bounds(paths [][]r2.Vec) (lo, hi r2.Vec) {
	first := true
	for _, pts := range paths {
		for _, p := range pts {
			if first {
				lo, hi, first = p, p, false
				continue
			}
			lo = r2.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
			hi = r2.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
		}
	}
	span := r2.Sub(hi, lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	pad := r2.Scale(0.1, span)
	return r2.Sub(lo, pad), r2.Add(hi, pad)
}

// TrajectoryToSVG draws one polyline per path on a shared, y-up frame.
// Paths with fewer than two points are skipped.
func TrajectoryToSVG(paths [][]r2.Vec, width, height int, strokeColors ...string) string {
	if len(strokeColors) == 0 {
		strokeColors = []string{"#00a8cc"}
	}
	lo, hi := bounds(paths)
	span := r2.Sub(hi, lo)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for k, pts := range paths {
		if len(pts) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColors[k%len(strokeColors)])
		for i, p := range pts {
			x := (p.X - lo.X) / span.X * float64(width)
			y := float64(height) - (p.Y-lo.Y)/span.Y*float64(height)
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
