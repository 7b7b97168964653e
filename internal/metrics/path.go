package metrics

import (
	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// PathLength is the arc length travelled by the particle.
type PathLength struct {
	name   string
	last   r2.Vec
	length float64
	seen   bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(s dynamo.ParticleState) {
	if p.seen {
		p.length += r2.Norm(r2.Sub(s.Position, p.last))
	}
	p.last = s.Position
	p.seen = true
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.length = 0
	p.seen = false
}

// Displacement is the straight-line distance from the release point.
type Displacement struct {
	name  string
	start r2.Vec
	cur   r2.Vec
	seen  bool
}

func NewDisplacement() *Displacement {
	return &Displacement{name: "displacement"}
}

func (d *Displacement) Name() string { return d.name }

func (d *Displacement) Observe(s dynamo.ParticleState) {
	if !d.seen {
		d.start = s.Position
		d.seen = true
	}
	d.cur = s.Position
}

func (d *Displacement) Value() float64 {
	return r2.Norm(r2.Sub(d.cur, d.start))
}

func (d *Displacement) Reset() {
	d.start, d.cur = r2.Vec{}, r2.Vec{}
	d.seen = false
}
