package history

import "sync"

// weightPool recycles weight buffers between convolutions. A stepper asks
// for a vector one entry longer than the last on every step, so buffers are
// grown with headroom.
type weightPool struct {
	pool sync.Pool
}

func newWeightPool() *weightPool {
	return &weightPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]float64, 0, 64)
				return &buf
			},
		},
	}
}

// Get returns a buffer of length size.
func (p *weightPool) Get(size int) *[]float64 {
	buf := p.pool.Get().(*[]float64)
	if cap(*buf) < size {
		*buf = make([]float64, size, size+size/4)
	}
	*buf = (*buf)[:size]
	return buf
}

func (p *weightPool) Put(buf *[]float64) {
	p.pool.Put(buf)
}

var weights = newWeightPool()
