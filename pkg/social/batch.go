package social

import (
	"math/rand"
)

const (
	// PowerSample flattens the degree distribution for negative sampling
	PowerSample = 0.75

	// maxCorruptAttempts bounds rejection sampling on dense graphs
	maxCorruptAttempts = 100
)

// Batch is one training batch of positive edges paired with corrupted
// negatives. Tags and Weights rows are dense multi-hot vectors of length
// NumTags; weights hold beta at present-label positions and 1 elsewhere.
type Batch struct {
	PosHead []int64
	PosTail []int64
	NegHead []int64
	NegTail []int64

	PosTags    [][]float64
	PosWeights [][]float64
	NegTags    [][]float64
	NegWeights [][]float64
}

// Size returns the number of examples in the batch.
func (b *Batch) Size() int { return len(b.PosHead) }

// AEBatch is one autoencoder pretraining batch of positive label vectors.
type AEBatch struct {
	Tags    [][]float64
	Weights [][]float64
}

// TestBatch is one evaluation batch of held-out edges.
type TestBatch struct {
	Head []int64
	Tail []int64
	Tags [][]float64
}

// Batcher draws shuffled training batches from a social network. Each full
// pass over the training edges is one epoch; the order is reshuffled at
// every epoch boundary. Negatives corrupt exactly one of head, tail or
// label set per positive example.
type Batcher struct {
	sn  *SocialNetwork
	rng *rand.Rand

	negTable []aliasTable

	order  []int
	cursor int

	aeOrder  []int
	aeCursor int
}

// NewBatcher creates a batcher over the network's training edges. The seed
// fixes the shuffle and corruption sequence.
func NewBatcher(sn *SocialNetwork, seed int64) *Batcher {
	rng := rand.New(rand.NewSource(seed))

	// Degree-weighted negative vertex sampling
	degree := make([]float64, sn.NumVertices)
	for _, e := range sn.TrainEdges {
		degree[e.Head]++
		degree[e.Tail]++
	}

	b := &Batcher{
		sn:       sn,
		rng:      rng,
		negTable: buildAliasTable(degree, PowerSample),
		order:    make([]int, len(sn.TrainEdges)),
		aeOrder:  make([]int, len(sn.TrainEdges)),
	}
	for i := range b.order {
		b.order[i] = i
		b.aeOrder[i] = i
	}
	b.shuffle(b.order)
	b.shuffle(b.aeOrder)
	return b
}

func (b *Batcher) shuffle(order []int) {
	for i := range order {
		j := i + b.rng.Intn(len(order)-i)
		order[i], order[j] = order[j], order[i]
	}
}

// NumBatches returns the number of batches per epoch at the given size.
func (b *Batcher) NumBatches(batchSize int) int {
	return (len(b.sn.TrainEdges) + batchSize - 1) / batchSize
}

// NextBatch returns the next training batch. The final batch of an epoch
// may be short; the following call starts a freshly shuffled epoch.
func (b *Batcher) NextBatch(batchSize int, beta float64) *Batch {
	if b.cursor >= len(b.order) {
		b.shuffle(b.order)
		b.cursor = 0
	}

	end := b.cursor + batchSize
	if end > len(b.order) {
		end = len(b.order)
	}
	n := end - b.cursor

	batch := &Batch{
		PosHead:    make([]int64, n),
		PosTail:    make([]int64, n),
		NegHead:    make([]int64, n),
		NegTail:    make([]int64, n),
		PosTags:    make([][]float64, n),
		PosWeights: make([][]float64, n),
		NegTags:    make([][]float64, n),
		NegWeights: make([][]float64, n),
	}

	for i := 0; i < n; i++ {
		idx := b.order[b.cursor+i]
		pos := b.sn.TrainEdges[idx]

		batch.PosHead[i] = pos.Head
		batch.PosTail[i] = pos.Tail
		batch.PosTags[i], batch.PosWeights[i] = b.multiHot(pos.Tags, beta)

		negHead, negTail, negTags := b.corrupt(idx)
		batch.NegHead[i] = negHead
		batch.NegTail[i] = negTail
		batch.NegTags[i], batch.NegWeights[i] = b.multiHot(negTags, beta)
	}

	b.cursor = end
	return batch
}

// NextAutoencoderBatch returns the next pretraining batch of positive
// label vectors, on an iteration order independent of NextBatch.
func (b *Batcher) NextAutoencoderBatch(batchSize int, beta float64) *AEBatch {
	if b.aeCursor >= len(b.aeOrder) {
		b.shuffle(b.aeOrder)
		b.aeCursor = 0
	}

	end := b.aeCursor + batchSize
	if end > len(b.aeOrder) {
		end = len(b.aeOrder)
	}
	n := end - b.aeCursor

	batch := &AEBatch{
		Tags:    make([][]float64, n),
		Weights: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		edge := b.sn.TrainEdges[b.aeOrder[b.aeCursor+i]]
		batch.Tags[i], batch.Weights[i] = b.multiHot(edge.Tags, beta)
	}

	b.aeCursor = end
	return batch
}

// TestBatches splits the held-out edges into evaluation batches.
func (b *Batcher) TestBatches(size int) []*TestBatch {
	batches := make([]*TestBatch, 0, (len(b.sn.TestEdges)+size-1)/size)

	for start := 0; start < len(b.sn.TestEdges); start += size {
		end := start + size
		if end > len(b.sn.TestEdges) {
			end = len(b.sn.TestEdges)
		}

		tb := &TestBatch{
			Head: make([]int64, 0, end-start),
			Tail: make([]int64, 0, end-start),
			Tags: make([][]float64, 0, end-start),
		}
		for _, e := range b.sn.TestEdges[start:end] {
			tb.Head = append(tb.Head, e.Head)
			tb.Tail = append(tb.Tail, e.Tail)
			tags, _ := b.multiHot(e.Tags, 1.0)
			tb.Tags = append(tb.Tags, tags)
		}
		batches = append(batches, tb)
	}

	return batches
}

// multiHot expands a tag ID set into a dense label vector and its
// reconstruction weight vector.
func (b *Batcher) multiHot(tags []int64, beta float64) (label, weight []float64) {
	label = make([]float64, b.sn.NumTags)
	weight = make([]float64, b.sn.NumTags)
	for i := range weight {
		weight[i] = 1.0
	}
	for _, tid := range tags {
		label[tid] = 1.0
		weight[tid] = beta
	}
	return label, weight
}

// corrupt produces a negative edge from the positive at idx by replacing
// exactly one of head, tail or label set.
func (b *Batcher) corrupt(idx int) (head, tail int64, tags []int64) {
	pos := b.sn.TrainEdges[idx]
	head, tail, tags = pos.Head, pos.Tail, pos.Tags

	switch b.rng.Intn(3) {
	case 0:
		head = b.corruptVertex(pos.Head, func(v int64) bool {
			return v != pos.Head && !b.sn.HasEdge(v, pos.Tail)
		})
	case 1:
		tail = b.corruptVertex(pos.Tail, func(v int64) bool {
			return v != pos.Tail && !b.sn.HasEdge(pos.Head, v)
		})
	default:
		tags = b.corruptTags(idx)
	}
	return head, tail, tags
}

func (b *Batcher) corruptVertex(orig int64, ok func(int64) bool) int64 {
	for attempt := 0; attempt < maxCorruptAttempts; attempt++ {
		v := sampleAlias(b.negTable, b.rng)
		if v >= 0 && ok(v) {
			return v
		}
	}
	// Dense graph fallback: uniform draw, accepting a possible false negative
	return b.rng.Int63n(b.sn.NumVertices)
}

func (b *Batcher) corruptTags(idx int) []int64 {
	if len(b.sn.TrainEdges) < 2 {
		return b.sn.TrainEdges[idx].Tags
	}
	for attempt := 0; attempt < maxCorruptAttempts; attempt++ {
		j := b.rng.Intn(len(b.sn.TrainEdges))
		if j != idx {
			return b.sn.TrainEdges[j].Tags
		}
	}
	return b.sn.TrainEdges[idx].Tags
}
