package transnet

import (
	"github.com/cnclabs/transnet/pkg/logger"
)

// evalKs are the ranking cutoffs reported by the evaluator
var evalKs = [...]int{1, 5, 10}

// Metrics holds ranking quality over the held-out split. HitsAt maps a
// cutoff k to the fraction of true labels ranked within the top k;
// MeanRank is the average 1-based rank position of true labels.
type Metrics struct {
	HitsAt   map[int]float64
	MeanRank float64
}

// Evaluate scores every held-out edge by decoding the translation
// difference of its vertex embeddings and ranking all labels. True labels
// that co-occur are not filtered from each other's rankings.
func (tn *TransNet) Evaluate() Metrics {
	hits := make(map[int]int64, len(evalKs))
	totalLabels := int64(0)
	rankSum := int64(0)

	for _, batch := range tn.batcher.TestBatches(tn.cfg.BatchSize) {
		for i := range batch.Head {
			scores := tn.scoreTags(batch.Head[i], batch.Tail[i])
			ranked := rankDescending(scores)

			position := make(map[int]int, len(ranked))
			for pos, tid := range ranked {
				position[tid] = pos + 1
			}

			for tid, present := range batch.Tags[i] {
				if present != 1.0 {
					continue
				}
				totalLabels++
				rank := position[tid]
				rankSum += int64(rank)
				for _, k := range evalKs {
					if rank <= k {
						hits[k]++
					}
				}
			}
		}
	}

	metrics := Metrics{HitsAt: make(map[int]float64, len(evalKs))}
	if totalLabels == 0 {
		return metrics
	}

	for _, k := range evalKs {
		metrics.HitsAt[k] = float64(hits[k]) / float64(totalLabels)
	}
	metrics.MeanRank = float64(rankSum) / float64(totalLabels)
	return metrics
}

func (m Metrics) log(epoch int) {
	logger.Info("evaluation",
		"epoch", epoch,
		"hits@1", m.HitsAt[1],
		"hits@5", m.HitsAt[5],
		"hits@10", m.HitsAt[10],
		"mean_rank", m.MeanRank,
	)
}
