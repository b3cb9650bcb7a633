package nn

import (
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
)

// normEpsilon guards the division in L2 normalization
const normEpsilon = 1e-10

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Normalized returns a unit-length copy of x and its original L2 norm.
// Near-zero vectors are returned unscaled with norm 0.
func Normalized(x []float64) (unit []float64, norm float64) {
	norm = math.Sqrt(vek.Dot(x, x))
	unit = make([]float64, len(x))
	copy(unit, x)
	if norm < normEpsilon {
		return unit, 0
	}
	vek.MulNumber_Inplace(unit, 1.0/norm)
	return unit, norm
}

// NormalizeBackward maps a gradient w.r.t. the unit vector back through L2
// normalization: d(x/‖x‖) = (g − û(û·g)) / ‖x‖. A zero norm means the
// normalization was skipped, so the gradient passes through unchanged.
func NormalizeBackward(unit []float64, norm float64, grad []float64) []float64 {
	out := make([]float64, len(grad))
	copy(out, grad)
	if norm == 0 {
		return out
	}
	proj := vek.Dot(unit, grad)
	for d := range out {
		out[d] = (out[d] - unit[d]*proj) / norm
	}
	return out
}

// L1Translation computes the translation distance Σ|u + l − v| and the
// elementwise sign of (u + l − v), which is the distance subgradient.
func L1Translation(u, l, v []float64) (dist float64, sign []float64) {
	sign = make([]float64, len(u))
	for d := range u {
		diff := u[d] + l[d] - v[d]
		dist += math.Abs(diff)
		switch {
		case diff > 0:
			sign[d] = 1
		case diff < 0:
			sign[d] = -1
		}
	}
	return dist, sign
}

// DenseFromRows packs row vectors into a gonum matrix.
func DenseFromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	out := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out
}
