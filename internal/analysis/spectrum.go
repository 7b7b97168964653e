package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitudes of the first len(data)/2 Fourier
// coefficients of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	coeffs := fft.FFTReal(data)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// Frequencies returns the frequency of each PowerSpectrum bin for n samples
// taken dt apart.
func Frequencies(n int, dt float64) []float64 {
	f := make([]float64, n/2)
	for i := range f {
		f[i] = float64(i) / (float64(n) * dt)
	}
	return f
}

// DominantFrequency is the frequency of the strongest non-constant bin.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	best := 0
	for i := 1; i < len(ps); i++ {
		if best == 0 || ps[i] > ps[best] {
			best = i
		}
	}
	if best == 0 {
		return 0
	}
	return Frequencies(len(data), dt)[best]
}
