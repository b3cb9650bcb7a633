package transnet

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/cnclabs/transnet/internal/config"
	"github.com/cnclabs/transnet/pkg/nn"
	"github.com/cnclabs/transnet/pkg/social"
)

// TransNet jointly learns vertex embeddings and a label-set autoencoder for
// social relation extraction. Edges are scored by the translation principle
// h + rep(labels) ≈ t, with the autoencoder's hidden layer acting as the
// relation vector.
type TransNet struct {
	sn      *social.SocialNetwork
	batcher *social.Batcher
	cfg     config.Config

	// Embeddings, one row per vertex
	headEmbeddings [][]float64
	tailEmbeddings [][]float64

	ae *nn.Autoencoder

	// Optimizer state
	optHead *nn.SparseAdam
	optTail *nn.SparseAdam
	optWEnc *nn.Adam
	optBEnc *nn.Adam
	optWDec *nn.Adam
	optBDec *nn.Adam

	rng *rand.Rand
}

// New creates a new TransNet instance
func New() *TransNet {
	return &TransNet{
		sn: social.NewSocialNetwork(),
	}
}

// Network exposes the underlying social network, mainly for programmatic
// dataset construction in tests and tooling.
func (tn *TransNet) Network() *social.SocialNetwork {
	return tn.sn
}

// LoadTrainEdges loads the training split from a labeled edge file
func (tn *TransNet) LoadTrainEdges(filename string) error {
	return tn.sn.LoadTrainEdges(filename)
}

// LoadTestEdges loads the held-out split from a labeled edge file
func (tn *TransNet) LoadTestEdges(filename string) error {
	return tn.sn.LoadTestEdges(filename)
}

// Init initializes embeddings, the autoencoder and the optimizers. Must be
// called after the edge files are loaded.
func (tn *TransNet) Init(cfg config.Config) {
	tn.cfg = cfg

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	tn.rng = rand.New(rand.NewSource(seed))

	fmt.Println("Model Setting:")
	fmt.Printf("\trep_size:\t\t%d\n", cfg.RepSize)
	fmt.Printf("\tmargin:\t\t\t%.2f\n", cfg.Margin)
	fmt.Printf("\talpha:\t\t\t%.4f\n", cfg.Alpha)
	fmt.Printf("\tbeta:\t\t\t%.2f\n", cfg.Beta)
	fmt.Printf("\tlambda:\t\t\t%.6f\n", cfg.Lambda)
	fmt.Printf("\tkeep_prob:\t\t%.2f\n", cfg.KeepProb)
	fmt.Println()
	fmt.Println("TransNet Principle:")
	fmt.Println("\thead + rep(labels) ≈ tail")
	fmt.Println("\t(labels encoded and reconstructed by an autoencoder)")

	numVertices := tn.sn.NumVertices
	tn.headEmbeddings = tn.newEmbeddingTable(numVertices)
	tn.tailEmbeddings = tn.newEmbeddingTable(numVertices)

	tn.ae = nn.NewAutoencoder(int(tn.sn.NumTags), cfg.RepSize, cfg.KeepProb, tn.rng)
	tn.batcher = social.NewBatcher(tn.sn, seed+1)

	tn.optHead = nn.NewSparseAdam(cfg.LearningRate, int(numVertices), cfg.RepSize)
	tn.optTail = nn.NewSparseAdam(cfg.LearningRate, int(numVertices), cfg.RepSize)
	tn.optWEnc = nn.NewAdam(cfg.LearningRate, int(tn.sn.NumTags)*cfg.RepSize)
	tn.optBEnc = nn.NewAdam(cfg.LearningRate, cfg.RepSize)
	tn.optWDec = nn.NewAdam(cfg.LearningRate, cfg.RepSize*int(tn.sn.NumTags))
	tn.optBDec = nn.NewAdam(cfg.LearningRate, int(tn.sn.NumTags))
}

func (tn *TransNet) newEmbeddingTable(rows int64) [][]float64 {
	table := make([][]float64, rows)
	for i := int64(0); i < rows; i++ {
		row := make([]float64, tn.cfg.RepSize)
		for d := range row {
			row[d] = (tn.rng.Float64() - 0.5) / float64(tn.cfg.RepSize)
		}
		table[i], _ = nn.Normalized(row)
	}
	return table
}

// PredictTags returns the top-k predicted relation labels for a vertex
// pair, ranked by the decoder's score on the translation difference.
func (tn *TransNet) PredictTags(head, tail string, k int) ([]string, error) {
	headID, exists := tn.sn.VertexHash[head]
	if !exists {
		return nil, fmt.Errorf("vertex not found: %s", head)
	}
	tailID, exists := tn.sn.VertexHash[tail]
	if !exists {
		return nil, fmt.Errorf("vertex not found: %s", tail)
	}

	scores := tn.scoreTags(headID, tailID)
	ranked := rankDescending(scores)
	if k > len(ranked) {
		k = len(ranked)
	}

	names := make([]string, 0, k)
	for _, tid := range ranked[:k] {
		names = append(names, tn.sn.GetTagName(int64(tid)))
	}
	return names, nil
}

// scoreTags computes sigmoid((v − u)·W_dec + b_dec) for a vertex pair from
// its normalized embeddings.
func (tn *TransNet) scoreTags(head, tail int64) []float64 {
	u, _ := nn.Normalized(tn.headEmbeddings[head])
	v, _ := nn.Normalized(tn.tailEmbeddings[tail])

	rep := make([]float64, tn.cfg.RepSize)
	for d := range rep {
		rep[d] = v[d] - u[d]
	}
	return tn.ae.DecodeVector(rep)
}

// rankDescending returns tag indices ordered by score, best first. Ties
// break on the lower index so rankings are deterministic.
func rankDescending(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

// SaveEmbeddings saves vertex embeddings and tag representations to files.
// Vertex rows hold the head-role and tail-role vectors concatenated; tag
// rows hold the decoder column for the tag.
func (tn *TransNet) SaveEmbeddings(vertexFile, tagFile string) error {
	fmt.Println("Save Model:")

	vf, err := os.Create(vertexFile)
	if err != nil {
		return fmt.Errorf("failed to create vertex file: %w", err)
	}
	defer vf.Close()

	fmt.Fprintf(vf, "%d %d\n", tn.sn.NumVertices, 2*tn.cfg.RepSize)
	for i := int64(0); i < tn.sn.NumVertices; i++ {
		fmt.Fprintf(vf, "%s", tn.sn.GetVertexName(i))
		for d := 0; d < tn.cfg.RepSize; d++ {
			fmt.Fprintf(vf, " %.6f", tn.headEmbeddings[i][d])
		}
		for d := 0; d < tn.cfg.RepSize; d++ {
			fmt.Fprintf(vf, " %.6f", tn.tailEmbeddings[i][d])
		}
		fmt.Fprintln(vf)
	}
	fmt.Printf("\tVertices saved to <%s>\n", vertexFile)

	tf, err := os.Create(tagFile)
	if err != nil {
		return fmt.Errorf("failed to create tag file: %w", err)
	}
	defer tf.Close()

	fmt.Fprintf(tf, "%d %d\n", tn.sn.NumTags, tn.cfg.RepSize)
	for t := int64(0); t < tn.sn.NumTags; t++ {
		fmt.Fprintf(tf, "%s", tn.sn.GetTagName(t))
		for d := 0; d < tn.cfg.RepSize; d++ {
			fmt.Fprintf(tf, " %.6f", tn.ae.WDec.At(d, int(t)))
		}
		fmt.Fprintln(tf)
	}
	fmt.Printf("\tTags saved to <%s>\n", tagFile)

	return nil
}
