package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Autoencoder is a single-hidden-layer autoencoder over multi-hot label
// vectors. The hidden representation doubles as the relation vector in the
// translation objective, so encode and decode are exposed separately and
// gradients are accumulated by the caller across both loss paths.
type Autoencoder struct {
	TagTotal int
	RepSize  int

	WEnc *mat.Dense // TagTotal × RepSize
	BEnc []float64
	WDec *mat.Dense // RepSize × TagTotal
	BDec []float64

	keepProb float64
	rng      *rand.Rand
}

// NewAutoencoder creates an autoencoder with uniformly initialized
// parameters. keepProb is the dropout keep probability applied to the
// hidden representation during training.
func NewAutoencoder(tagTotal, repSize int, keepProb float64, rng *rand.Rand) *Autoencoder {
	ae := &Autoencoder{
		TagTotal: tagTotal,
		RepSize:  repSize,
		WEnc:     mat.NewDense(tagTotal, repSize, nil),
		BEnc:     make([]float64, repSize),
		WDec:     mat.NewDense(repSize, tagTotal, nil),
		BDec:     make([]float64, tagTotal),
		keepProb: keepProb,
		rng:      rng,
	}

	initUniform(ae.WEnc.RawMatrix().Data, repSize, rng)
	initUniform(ae.WDec.RawMatrix().Data, repSize, rng)
	initUniform(ae.BEnc, repSize, rng)
	initUniform(ae.BDec, repSize, rng)

	return ae
}

func initUniform(data []float64, dim int, rng *rand.Rand) {
	for i := range data {
		data[i] = (rng.Float64() - 0.5) / float64(dim)
	}
}

// Encoding caches the forward pass state needed for backpropagation.
type Encoding struct {
	// H is the hidden representation after dropout, one row per example
	H *mat.Dense

	raw  *mat.Dense // tanh activations before dropout
	mask *mat.Dense // inverted dropout mask, nil outside training
	x    *mat.Dense // input label vectors
}

// Encode computes rep = tanh(x·W_enc + b_enc), applying inverted dropout
// when train is set.
func (ae *Autoencoder) Encode(x *mat.Dense, train bool) *Encoding {
	rows, _ := x.Dims()

	raw := mat.NewDense(rows, ae.RepSize, nil)
	raw.Mul(x, ae.WEnc)
	data := raw.RawMatrix().Data
	for i := 0; i < rows; i++ {
		off := i * ae.RepSize
		for d := 0; d < ae.RepSize; d++ {
			data[off+d] = math.Tanh(data[off+d] + ae.BEnc[d])
		}
	}

	enc := &Encoding{H: raw, raw: raw, x: x}
	if !train || ae.keepProb >= 1.0 {
		return enc
	}

	mask := mat.NewDense(rows, ae.RepSize, nil)
	maskData := mask.RawMatrix().Data
	scale := 1.0 / ae.keepProb
	for i := range maskData {
		if ae.rng.Float64() < ae.keepProb {
			maskData[i] = scale
		}
	}

	dropped := mat.NewDense(rows, ae.RepSize, nil)
	dropped.MulElem(raw, mask)

	enc.H = dropped
	enc.mask = mask
	return enc
}

// Decode computes ŝ = sigmoid(rep·W_dec + b_dec).
func (ae *Autoencoder) Decode(h *mat.Dense) *mat.Dense {
	rows, _ := h.Dims()

	out := mat.NewDense(rows, ae.TagTotal, nil)
	out.Mul(h, ae.WDec)
	data := out.RawMatrix().Data
	for i := 0; i < rows; i++ {
		off := i * ae.TagTotal
		for t := 0; t < ae.TagTotal; t++ {
			data[off+t] = Sigmoid(data[off+t] + ae.BDec[t])
		}
	}
	return out
}

// DecodeVector decodes a single hidden representation. The evaluator feeds
// it the translation difference between tail and head embeddings.
func (ae *Autoencoder) DecodeVector(rep []float64) []float64 {
	out := make([]float64, ae.TagTotal)
	for t := 0; t < ae.TagTotal; t++ {
		sum := ae.BDec[t]
		for d := 0; d < ae.RepSize; d++ {
			sum += rep[d] * ae.WDec.At(d, t)
		}
		out[t] = Sigmoid(sum)
	}
	return out
}

// ReconstructionLoss is the sparsity-weighted L1 reconstruction error
// Σ |(ŝ − s) ⊙ w|.
func (ae *Autoencoder) ReconstructionLoss(sHat, s, w *mat.Dense) float64 {
	hd := sHat.RawMatrix().Data
	sd := s.RawMatrix().Data
	wd := w.RawMatrix().Data

	loss := 0.0
	for i := range hd {
		loss += math.Abs((hd[i] - sd[i]) * wd[i])
	}
	return loss
}

// ReconstructionBackward returns the loss gradient w.r.t. ŝ,
// sign(ŝ − s) ⊙ w, scaled by the given loss weight.
func (ae *Autoencoder) ReconstructionBackward(sHat, s, w *mat.Dense, scale float64) *mat.Dense {
	rows, cols := sHat.Dims()
	out := mat.NewDense(rows, cols, nil)

	hd := sHat.RawMatrix().Data
	sd := s.RawMatrix().Data
	wd := w.RawMatrix().Data
	od := out.RawMatrix().Data

	for i := range od {
		diff := hd[i] - sd[i]
		switch {
		case diff > 0:
			od[i] = scale * wd[i]
		case diff < 0:
			od[i] = -scale * wd[i]
		}
	}
	return out
}

// Gradients accumulates parameter gradients across the loss paths of one
// optimizer step.
type Gradients struct {
	WEnc *mat.Dense
	BEnc []float64
	WDec *mat.Dense
	BDec []float64
}

// NewGradients returns a zeroed gradient accumulator shaped like the
// autoencoder's parameters.
func (ae *Autoencoder) NewGradients() *Gradients {
	return &Gradients{
		WEnc: mat.NewDense(ae.TagTotal, ae.RepSize, nil),
		BEnc: make([]float64, ae.RepSize),
		WDec: mat.NewDense(ae.RepSize, ae.TagTotal, nil),
		BDec: make([]float64, ae.TagTotal),
	}
}

// DecodeBackward pushes a gradient w.r.t. ŝ through the decoder,
// accumulating into g and returning the gradient w.r.t. the hidden
// representation.
func (ae *Autoencoder) DecodeBackward(gradSHat, sHat *mat.Dense, enc *Encoding, g *Gradients) *mat.Dense {
	rows, cols := gradSHat.Dims()

	// Through the sigmoid: ŝ(1 − ŝ)
	gradZ := mat.NewDense(rows, cols, nil)
	gd := gradSHat.RawMatrix().Data
	sd := sHat.RawMatrix().Data
	zd := gradZ.RawMatrix().Data
	for i := range zd {
		zd[i] = gd[i] * sd[i] * (1.0 - sd[i])
	}

	var wGrad mat.Dense
	wGrad.Mul(enc.H.T(), gradZ)
	g.WDec.Add(g.WDec, &wGrad)
	addColumnSums(g.BDec, gradZ)

	gradH := mat.NewDense(rows, ae.RepSize, nil)
	gradH.Mul(gradZ, ae.WDec.T())
	return gradH
}

// EncodeBackward pushes a gradient w.r.t. the (post-dropout) hidden
// representation through dropout and the encoder, accumulating into g.
func (ae *Autoencoder) EncodeBackward(gradH *mat.Dense, enc *Encoding, g *Gradients) {
	rows, cols := gradH.Dims()

	gradZ := mat.NewDense(rows, cols, nil)
	gd := gradH.RawMatrix().Data
	rd := enc.raw.RawMatrix().Data
	zd := gradZ.RawMatrix().Data

	if enc.mask != nil {
		md := enc.mask.RawMatrix().Data
		for i := range zd {
			zd[i] = gd[i] * md[i] * (1.0 - rd[i]*rd[i])
		}
	} else {
		for i := range zd {
			zd[i] = gd[i] * (1.0 - rd[i]*rd[i])
		}
	}

	var wGrad mat.Dense
	wGrad.Mul(enc.x.T(), gradZ)
	g.WEnc.Add(g.WEnc, &wGrad)
	addColumnSums(g.BEnc, gradZ)
}

// RegLoss is the squared norm of all four parameter tensors.
func (ae *Autoencoder) RegLoss() float64 {
	loss := squaredSum(ae.WEnc.RawMatrix().Data)
	loss += squaredSum(ae.WDec.RawMatrix().Data)
	loss += squaredSum(ae.BEnc)
	loss += squaredSum(ae.BDec)
	return loss
}

// AddRegBackward accumulates the gradient of lambda·RegLoss into g.
func (ae *Autoencoder) AddRegBackward(g *Gradients, lambda float64) {
	addScaled(g.WEnc.RawMatrix().Data, ae.WEnc.RawMatrix().Data, 2.0*lambda)
	addScaled(g.WDec.RawMatrix().Data, ae.WDec.RawMatrix().Data, 2.0*lambda)
	addScaled(g.BEnc, ae.BEnc, 2.0*lambda)
	addScaled(g.BDec, ae.BDec, 2.0*lambda)
}

func squaredSum(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return sum
}

func addScaled(dst, src []float64, scale float64) {
	for i := range dst {
		dst[i] += scale * src[i]
	}
}

func addColumnSums(dst []float64, m *mat.Dense) {
	rows, cols := m.Dims()
	data := m.RawMatrix().Data
	for i := 0; i < rows; i++ {
		off := i * cols
		for j := 0; j < cols; j++ {
			dst[j] += data[off+j]
		}
	}
}
