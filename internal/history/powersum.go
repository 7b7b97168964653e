package history

import "math"

// seriesThreshold is the argument above which a power sum is evaluated
// through its asymptotic series instead of term by term.
const seriesThreshold = 24

// seriesTerms bounds the truncation error by (5/24)^seriesTerms for the
// largest shift used below.
const seriesTerms = 40

// term is coef·(x-shift)^pow with pow a positive half-integer.
type term struct {
	coef, shift, pow float64
}

// powerSum is a finite sum of shifted half-integer powers. The weight
// formulas are all of this shape, and for large x their terms are huge and
// nearly cancel. Expanding every term binomially around x gives
//
//	Σ coef·(x-shift)^pow = sqrt(x)·Σ_r c_r·x^(-r)
//
// where the coefficients of positive powers of x vanish identically. Only
// r >= 0 is kept, so the large-x evaluation never forms the big terms.
type powerSum struct {
	terms  []term
	series []float64
	// lead holds the r < 0 coefficients. They must be zero up to rounding.
	lead []float64
}

func newPowerSum(terms ...term) *powerSum {
	p := &powerSum{terms: terms}

	emax := 0
	for _, t := range terms {
		if e := int(t.pow - 0.5); e > emax {
			emax = e
		}
	}

	for r := -emax; r < seriesTerms; r++ {
		c := 0.0
		for _, t := range terms {
			m := int(t.pow-0.5) + r
			if m < 0 {
				continue
			}
			c += t.coef * binomial(t.pow, m) * math.Pow(-t.shift, float64(m))
		}
		if r < 0 {
			p.lead = append(p.lead, c)
		} else {
			p.series = append(p.series, c)
		}
	}
	return p
}

// scaled returns terms with every coefficient multiplied by k.
func scaled(k float64, terms ...term) []term {
	out := make([]term, len(terms))
	for i, t := range terms {
		out[i] = term{coef: k * t.coef, shift: t.shift, pow: t.pow}
	}
	return out
}

func join(groups ...[]term) []term {
	var out []term
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (p *powerSum) eval(x float64) float64 {
	if x >= seriesThreshold {
		return p.asymptotic(x)
	}
	return p.direct(x)
}

func (p *powerSum) direct(x float64) float64 {
	s := 0.0
	for _, t := range p.terms {
		s += t.coef * math.Pow(x-t.shift, t.pow)
	}
	return s
}

func (p *powerSum) asymptotic(x float64) float64 {
	u := 1 / x
	s := 0.0
	for i := len(p.series) - 1; i >= 0; i-- {
		s = s*u + p.series[i]
	}
	return math.Sqrt(x) * s
}

// binomial is the generalised binomial coefficient C(q, m) for real q.
func binomial(q float64, m int) float64 {
	r := 1.0
	for i := 0; i < m; i++ {
		r *= (q - float64(i)) / float64(i+1)
	}
	return r
}
