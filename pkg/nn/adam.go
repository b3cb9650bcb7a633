package nn

import "math"

// Adam defaults from the adaptive moment estimation paper
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// Adam is an adaptive moment estimation optimizer for one flat parameter
// slice. Matrix parameters are stepped through their backing data slice.
type Adam struct {
	lr float64
	t  int
	m  []float64
	v  []float64
}

// NewAdam creates an optimizer for a parameter of the given size.
func NewAdam(lr float64, size int) *Adam {
	return &Adam{
		lr: lr,
		m:  make([]float64, size),
		v:  make([]float64, size),
	}
}

// Step applies one update to param in place. param and grad must have the
// size the optimizer was created with.
func (a *Adam) Step(param, grad []float64) {
	a.t++
	c1 := 1.0 - math.Pow(adamBeta1, float64(a.t))
	c2 := 1.0 - math.Pow(adamBeta2, float64(a.t))

	for i := range param {
		g := grad[i]
		a.m[i] = adamBeta1*a.m[i] + (1.0-adamBeta1)*g
		a.v[i] = adamBeta2*a.v[i] + (1.0-adamBeta2)*g*g

		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		param[i] -= a.lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

// SparseAdam keeps per-row Adam state for an embedding table, stepping only
// the rows a batch touched. Bias correction uses per-row step counts.
type SparseAdam struct {
	lr  float64
	dim int
	t   []int
	m   [][]float64
	v   [][]float64
}

// NewSparseAdam creates an optimizer for a rows×dim embedding table.
func NewSparseAdam(lr float64, rows, dim int) *SparseAdam {
	sa := &SparseAdam{
		lr:  lr,
		dim: dim,
		t:   make([]int, rows),
		m:   make([][]float64, rows),
		v:   make([][]float64, rows),
	}
	for i := range sa.m {
		sa.m[i] = make([]float64, dim)
		sa.v[i] = make([]float64, dim)
	}
	return sa
}

// StepRow applies one update to a single embedding row in place.
func (sa *SparseAdam) StepRow(param []float64, row int, grad []float64) {
	sa.t[row]++
	c1 := 1.0 - math.Pow(adamBeta1, float64(sa.t[row]))
	c2 := 1.0 - math.Pow(adamBeta2, float64(sa.t[row]))

	m := sa.m[row]
	v := sa.v[row]
	for d := 0; d < sa.dim; d++ {
		g := grad[d]
		m[d] = adamBeta1*m[d] + (1.0-adamBeta1)*g
		v[d] = adamBeta2*v[d] + (1.0-adamBeta2)*g*g

		mHat := m[d] / c1
		vHat := v[d] / c2
		param[d] -= sa.lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}
