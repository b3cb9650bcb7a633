package transnet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/transnet/pkg/logger"
	"github.com/cnclabs/transnet/pkg/nn"
)

// WarmUp pretrains the autoencoder on positive label vectors, minimizing
// the weighted reconstruction loss plus the regularizer. Returns the mean
// per-edge loss of each epoch.
func (tn *TransNet) WarmUp() []float64 {
	cfg := tn.cfg

	fmt.Println("Learning Parameters:")
	fmt.Printf("\twarm_up_epochs:\t\t%d\n", cfg.WarmUpEpochs)
	fmt.Printf("\tbatch_size:\t\t%d\n", cfg.BatchSize)
	fmt.Printf("\tlearning_rate:\t\t%.6f\n", cfg.LearningRate)
	fmt.Println()
	fmt.Println("Start Warm-Up:")

	numBatches := tn.batcher.NumBatches(cfg.BatchSize)
	numEdges := float64(len(tn.sn.TrainEdges))
	losses := make([]float64, 0, cfg.WarmUpEpochs)

	for epoch := 0; epoch < cfg.WarmUpEpochs; epoch++ {
		epochLoss := 0.0

		for b := 0; b < numBatches; b++ {
			batch := tn.batcher.NextAutoencoderBatch(cfg.BatchSize, cfg.Beta)

			x := nn.DenseFromRows(batch.Tags)
			w := nn.DenseFromRows(batch.Weights)

			enc := tn.ae.Encode(x, true)
			sHat := tn.ae.Decode(enc.H)

			epochLoss += tn.ae.ReconstructionLoss(sHat, x, w) + cfg.Lambda*tn.ae.RegLoss()

			grads := tn.ae.NewGradients()
			gradSHat := tn.ae.ReconstructionBackward(sHat, x, w, 1.0)
			gradH := tn.ae.DecodeBackward(gradSHat, sHat, enc, grads)
			tn.ae.EncodeBackward(gradH, enc, grads)
			tn.ae.AddRegBackward(grads, cfg.Lambda)
			tn.applyStep(grads)
		}

		avg := epochLoss / numEdges
		losses = append(losses, avg)
		logger.Info("warm-up epoch", "epoch", epoch+1, "of", cfg.WarmUpEpochs, "loss", avg)
	}

	return losses
}

// Train runs the joint phase, minimizing the hinge translation loss plus
// the weighted reconstruction losses of both edges and the regularizer.
// Every DisplayStep epochs the held-out split is evaluated. Returns the
// mean per-edge loss of each epoch.
func (tn *TransNet) Train() []float64 {
	cfg := tn.cfg

	fmt.Println("Learning Parameters:")
	fmt.Printf("\tepochs:\t\t\t%d\n", cfg.Epochs)
	fmt.Printf("\tbatch_size:\t\t%d\n", cfg.BatchSize)
	fmt.Printf("\tlearning_rate:\t\t%.6f\n", cfg.LearningRate)
	fmt.Printf("\tdisplay_step:\t\t%d\n", cfg.DisplayStep)
	fmt.Println()
	fmt.Println("Start Joint Training:")

	numBatches := tn.batcher.NumBatches(cfg.BatchSize)
	numEdges := float64(len(tn.sn.TrainEdges))
	losses := make([]float64, 0, cfg.Epochs)

	evaluated := false
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		epochLoss := 0.0
		for b := 0; b < numBatches; b++ {
			epochLoss += tn.jointStep()
		}

		avg := epochLoss / numEdges
		losses = append(losses, avg)
		logger.Info("joint epoch", "epoch", epoch+1, "of", cfg.Epochs, "loss", avg)

		evaluated = false
		if cfg.DisplayStep > 0 && (epoch+1)%cfg.DisplayStep == 0 && len(tn.sn.TestEdges) > 0 {
			metrics := tn.Evaluate()
			metrics.log(epoch + 1)
			evaluated = true
		}
	}

	if !evaluated && len(tn.sn.TestEdges) > 0 {
		metrics := tn.Evaluate()
		metrics.log(cfg.Epochs)
	}

	fmt.Println("\nTraining Complete!")
	return losses
}

// jointStep consumes one batch and applies one optimizer step to the
// autoencoder parameters and the touched embedding rows. Returns the batch
// loss under the joint objective.
func (tn *TransNet) jointStep() float64 {
	cfg := tn.cfg
	batch := tn.batcher.NextBatch(cfg.BatchSize, cfg.Beta)
	n := batch.Size()

	xPos := nn.DenseFromRows(batch.PosTags)
	wPos := nn.DenseFromRows(batch.PosWeights)
	xNeg := nn.DenseFromRows(batch.NegTags)
	wNeg := nn.DenseFromRows(batch.NegWeights)

	encPos := tn.ae.Encode(xPos, true)
	encNeg := tn.ae.Encode(xNeg, true)
	sHatPos := tn.ae.Decode(encPos.H)
	sHatNeg := tn.ae.Decode(encNeg.H)

	// Translation hinge loss and its gradients. Embedding rows are stepped
	// per example; the hidden-representation gradients join the autoencoder
	// backward pass below.
	gradHPos := mat.NewDense(n, cfg.RepSize, nil)
	gradHNeg := mat.NewDense(n, cfg.RepSize, nil)
	lossTrans := 0.0

	for i := 0; i < n; i++ {
		uPos, uPosNorm := nn.Normalized(tn.headEmbeddings[batch.PosHead[i]])
		vPos, vPosNorm := nn.Normalized(tn.tailEmbeddings[batch.PosTail[i]])
		uNeg, uNegNorm := nn.Normalized(tn.headEmbeddings[batch.NegHead[i]])
		vNeg, vNegNorm := nn.Normalized(tn.tailEmbeddings[batch.NegTail[i]])

		dPos, signPos := nn.L1Translation(uPos, encPos.H.RawRowView(i), vPos)
		dNeg, signNeg := nn.L1Translation(uNeg, encNeg.H.RawRowView(i), vNeg)

		violation := cfg.Margin + dPos - dNeg
		if violation <= 0 {
			continue
		}
		lossTrans += violation

		gradHPos.SetRow(i, signPos)
		gradHNeg.SetRow(i, negated(signNeg))

		gU := nn.NormalizeBackward(uPos, uPosNorm, signPos)
		gV := nn.NormalizeBackward(vPos, vPosNorm, negated(signPos))
		gUn := nn.NormalizeBackward(uNeg, uNegNorm, negated(signNeg))
		gVn := nn.NormalizeBackward(vNeg, vNegNorm, signNeg)

		tn.optHead.StepRow(tn.headEmbeddings[batch.PosHead[i]], int(batch.PosHead[i]), gU)
		tn.optTail.StepRow(tn.tailEmbeddings[batch.PosTail[i]], int(batch.PosTail[i]), gV)
		tn.optHead.StepRow(tn.headEmbeddings[batch.NegHead[i]], int(batch.NegHead[i]), gUn)
		tn.optTail.StepRow(tn.tailEmbeddings[batch.NegTail[i]], int(batch.NegTail[i]), gVn)
	}

	lossAE := tn.ae.ReconstructionLoss(sHatPos, xPos, wPos) +
		tn.ae.ReconstructionLoss(sHatNeg, xNeg, wNeg)

	grads := tn.ae.NewGradients()

	gradSPos := tn.ae.ReconstructionBackward(sHatPos, xPos, wPos, cfg.Alpha)
	hPos := tn.ae.DecodeBackward(gradSPos, sHatPos, encPos, grads)
	hPos.Add(hPos, gradHPos)
	tn.ae.EncodeBackward(hPos, encPos, grads)

	gradSNeg := tn.ae.ReconstructionBackward(sHatNeg, xNeg, wNeg, cfg.Alpha)
	hNeg := tn.ae.DecodeBackward(gradSNeg, sHatNeg, encNeg, grads)
	hNeg.Add(hNeg, gradHNeg)
	tn.ae.EncodeBackward(hNeg, encNeg, grads)

	tn.ae.AddRegBackward(grads, cfg.Lambda)
	tn.applyStep(grads)

	return lossTrans + cfg.Alpha*lossAE + cfg.Lambda*tn.ae.RegLoss()
}

func (tn *TransNet) applyStep(g *nn.Gradients) {
	tn.optWEnc.Step(tn.ae.WEnc.RawMatrix().Data, g.WEnc.RawMatrix().Data)
	tn.optBEnc.Step(tn.ae.BEnc, g.BEnc)
	tn.optWDec.Step(tn.ae.WDec.RawMatrix().Data, g.WDec.RawMatrix().Data)
	tn.optBDec.Step(tn.ae.BDec, g.BDec)
}

func negated(s []float64) []float64 {
	out := make([]float64, len(s))
	for d := range s {
		out[d] = -s[d]
	}
	return out
}
