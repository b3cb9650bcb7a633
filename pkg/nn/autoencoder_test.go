package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testBatch() (x, w *mat.Dense) {
	beta := 5.0
	x = DenseFromRows([][]float64{
		{1, 0, 1, 0},
		{0, 1, 0, 0},
	})
	w = DenseFromRows([][]float64{
		{beta, 1, beta, 1},
		{1, beta, 1, 1},
	})
	return x, w
}

func TestEncodeDecodeShapes(t *testing.T) {
	ae := NewAutoencoder(4, 3, 1.0, rand.New(rand.NewSource(1)))
	x, _ := testBatch()

	enc := ae.Encode(x, true)
	rows, cols := enc.H.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)

	sHat := ae.Decode(enc.H)
	rows, cols = sHat.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 4, cols)
}

func TestEncodeDecodeRanges(t *testing.T) {
	ae := NewAutoencoder(4, 3, 1.0, rand.New(rand.NewSource(1)))
	x, _ := testBatch()

	enc := ae.Encode(x, false)
	for _, h := range enc.H.RawMatrix().Data {
		assert.Greater(t, h, -1.0)
		assert.Less(t, h, 1.0)
	}

	sHat := ae.Decode(enc.H)
	for _, s := range sHat.RawMatrix().Data {
		assert.Greater(t, s, 0.0)
		assert.Less(t, s, 1.0)
	}
}

func TestDropoutMask(t *testing.T) {
	ae := NewAutoencoder(4, 8, 0.5, rand.New(rand.NewSource(3)))
	x, _ := testBatch()

	enc := ae.Encode(x, true)
	require.NotNil(t, enc.mask)

	// Inverted dropout: entries are either zeroed or scaled by 1/keep
	raw := enc.raw.RawMatrix().Data
	dropped := enc.H.RawMatrix().Data
	zeroed := 0
	for i := range dropped {
		if dropped[i] == 0 {
			zeroed++
			continue
		}
		assert.InDelta(t, 2.0*raw[i], dropped[i], 1e-12)
	}
	assert.Greater(t, zeroed, 0)
}

func TestNoDropoutOutsideTraining(t *testing.T) {
	ae := NewAutoencoder(4, 8, 0.5, rand.New(rand.NewSource(3)))
	x, _ := testBatch()

	enc := ae.Encode(x, false)
	assert.Nil(t, enc.mask)
}

func TestReconstructionLossZeroOnPerfectReconstruction(t *testing.T) {
	ae := NewAutoencoder(4, 3, 1.0, rand.New(rand.NewSource(1)))
	x, w := testBatch()

	assert.Equal(t, 0.0, ae.ReconstructionLoss(x, x, w))
}

func TestReconstructionLossWeighting(t *testing.T) {
	ae := NewAutoencoder(2, 2, 1.0, rand.New(rand.NewSource(1)))

	s := DenseFromRows([][]float64{{1, 0}})
	sHat := DenseFromRows([][]float64{{0.5, 0.5}})

	unweighted := DenseFromRows([][]float64{{1, 1}})
	weighted := DenseFromRows([][]float64{{10, 1}})

	assert.InDelta(t, 1.0, ae.ReconstructionLoss(sHat, s, unweighted), 1e-12)
	assert.InDelta(t, 5.5, ae.ReconstructionLoss(sHat, s, weighted), 1e-12)
}

func TestRegLossPositive(t *testing.T) {
	ae := NewAutoencoder(4, 3, 1.0, rand.New(rand.NewSource(1)))
	assert.Greater(t, ae.RegLoss(), 0.0)
}

// TestGradientsMatchFiniteDifference verifies the full backward pass of the
// reconstruction objective against central finite differences.
func TestGradientsMatchFiniteDifference(t *testing.T) {
	const lambda = 0.01

	ae := NewAutoencoder(4, 3, 1.0, rand.New(rand.NewSource(7)))
	x, w := testBatch()

	loss := func() float64 {
		enc := ae.Encode(x, false)
		sHat := ae.Decode(enc.H)
		return ae.ReconstructionLoss(sHat, x, w) + lambda*ae.RegLoss()
	}

	enc := ae.Encode(x, false)
	sHat := ae.Decode(enc.H)
	grads := ae.NewGradients()
	gradSHat := ae.ReconstructionBackward(sHat, x, w, 1.0)
	gradH := ae.DecodeBackward(gradSHat, sHat, enc, grads)
	ae.EncodeBackward(gradH, enc, grads)
	ae.AddRegBackward(grads, lambda)

	check := func(name string, param, grad []float64) {
		const eps = 1e-6
		for i := range param {
			orig := param[i]

			param[i] = orig + eps
			plus := loss()
			param[i] = orig - eps
			minus := loss()
			param[i] = orig

			numeric := (plus - minus) / (2 * eps)
			require.InDelta(t, numeric, grad[i], 1e-5, "%s[%d]", name, i)
		}
	}

	check("WEnc", ae.WEnc.RawMatrix().Data, grads.WEnc.RawMatrix().Data)
	check("BEnc", ae.BEnc, grads.BEnc)
	check("WDec", ae.WDec.RawMatrix().Data, grads.WDec.RawMatrix().Data)
	check("BDec", ae.BDec, grads.BDec)
}

func TestDecodeVectorMatchesBatchDecode(t *testing.T) {
	ae := NewAutoencoder(4, 3, 1.0, rand.New(rand.NewSource(9)))

	rep := []float64{0.2, -0.4, 0.6}
	h := DenseFromRows([][]float64{rep})

	batch := ae.Decode(h)
	single := ae.DecodeVector(rep)

	for tag := 0; tag < 4; tag++ {
		assert.InDelta(t, batch.At(0, tag), single[tag], 1e-12)
	}
}
