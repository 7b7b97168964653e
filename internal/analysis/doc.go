// Package analysis provides accuracy and trajectory analysis tools.
//
//   - [ExactSineHistory]: reference value of the history integral of sin
//   - [Convergence]: error of the history quadrature against that reference
//   - [PowerSpectrum]: magnitude spectrum of a trajectory component
//   - [NewPortrait]: 2D phase portrait of two trajectory columns
//   - [Stroboscopic]: section of a trajectory sampled once per flow period
//
// # Quadrature accuracy
//
// The error table shows the observed order of each scheme:
//
//	rows, err := analysis.Convergence([]int{1, 2, 3}, []int{51, 101, 201}, 10)
//	for _, r := range rows {
//	    fmt.Println(r.Order, r.Points, r.MaxError, r.Rate)
//	}
package analysis
