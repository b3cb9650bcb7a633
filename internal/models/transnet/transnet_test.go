package transnet

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/transnet/internal/config"
)

func toyConfig() config.Config {
	return config.Config{
		RepSize:      8,
		Epochs:       1,
		WarmUpEpochs: 1,
		BatchSize:    2,
		LearningRate: 0.01,
		Alpha:        0.5,
		Beta:         5.0,
		Lambda:       0.001,
		Margin:       1.0,
		KeepProb:     0.8,
		DisplayStep:  0,
		Seed:         42,
	}
}

// toyModel builds a 10-vertex, 5-label network with a couple of held-out
// edges and initializes the model on it.
func toyModel(cfg config.Config) *TransNet {
	tn := New()
	sn := tn.Network()

	tags := []string{"t0", "t1", "t2", "t3", "t4"}
	for i := 0; i < 10; i++ {
		head := fmt.Sprintf("v%d", i)
		tail := fmt.Sprintf("v%d", (i+1)%10)
		sn.AddEdge(head, tail, []string{tags[i%5]})
	}
	sn.AddEdge("v0", "v3", []string{"t1", "t4"})
	sn.AddEdge("v5", "v8", []string{"t0", "t2"})
	sn.AddTestEdge("v0", "v5", []string{"t0"})
	sn.AddTestEdge("v2", "v7", []string{"t2", "t3"})

	tn.Init(cfg)
	return tn
}

func requireFinite(t *testing.T, values []float64) {
	t.Helper()
	for i, v := range values {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "value %d is %v", i, v)
	}
}

func TestEndToEndToyRun(t *testing.T) {
	tn := toyModel(toyConfig())

	warmUpLosses := tn.WarmUp()
	require.Len(t, warmUpLosses, 1)
	requireFinite(t, warmUpLosses)

	jointLosses := tn.Train()
	require.Len(t, jointLosses, 1)
	requireFinite(t, jointLosses)

	metrics := tn.Evaluate()
	require.NotEmpty(t, metrics.HitsAt)

	assert.LessOrEqual(t, metrics.HitsAt[1], metrics.HitsAt[5])
	assert.LessOrEqual(t, metrics.HitsAt[5], metrics.HitsAt[10])
	// Five labels total, so the top 10 always contain every true label
	assert.Equal(t, 1.0, metrics.HitsAt[10])

	assert.GreaterOrEqual(t, metrics.MeanRank, 1.0)
	assert.LessOrEqual(t, metrics.MeanRank, 5.0)
}

func TestWarmUpLossDecreasesOnAverage(t *testing.T) {
	cfg := toyConfig()
	cfg.WarmUpEpochs = 40
	tn := toyModel(cfg)

	losses := tn.WarmUp()
	require.Len(t, losses, 40)
	requireFinite(t, losses)

	mean := func(vals []float64) float64 {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}

	assert.Less(t, mean(losses[30:]), mean(losses[:10]))
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	a := toyModel(toyConfig())
	b := toyModel(toyConfig())

	a.WarmUp()
	b.WarmUp()
	assert.Equal(t, a.Train(), b.Train())
}

func TestPredictTags(t *testing.T) {
	tn := toyModel(toyConfig())
	tn.WarmUp()
	tn.Train()

	predicted, err := tn.PredictTags("v0", "v5", 3)
	require.NoError(t, err)
	require.Len(t, predicted, 3)

	seen := make(map[string]bool)
	for _, name := range predicted {
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate prediction %s", name)
		seen[name] = true
	}

	_, err = tn.PredictTags("v0", "nobody", 3)
	assert.Error(t, err)
}

func TestPredictTagsClampsK(t *testing.T) {
	tn := toyModel(toyConfig())

	predicted, err := tn.PredictTags("v0", "v1", 100)
	require.NoError(t, err)
	assert.Len(t, predicted, 5)
}

func TestSaveEmbeddings(t *testing.T) {
	tn := toyModel(toyConfig())
	tn.WarmUp()
	tn.Train()

	dir := t.TempDir()
	vertexFile := filepath.Join(dir, "vertices.txt")
	tagFile := filepath.Join(dir, "tags.txt")
	require.NoError(t, tn.SaveEmbeddings(vertexFile, tagFile))

	vertexData, err := os.ReadFile(vertexFile)
	require.NoError(t, err)
	var vertexCount, vertexDim int
	_, err = fmt.Sscanf(string(vertexData), "%d %d", &vertexCount, &vertexDim)
	require.NoError(t, err)
	assert.Equal(t, 10, vertexCount)
	assert.Equal(t, 16, vertexDim)

	tagData, err := os.ReadFile(tagFile)
	require.NoError(t, err)
	var tagCount, tagDim int
	_, err = fmt.Sscanf(string(tagData), "%d %d", &tagCount, &tagDim)
	require.NoError(t, err)
	assert.Equal(t, 5, tagCount)
	assert.Equal(t, 8, tagDim)
}

func TestRankDescending(t *testing.T) {
	ranked := rankDescending([]float64{0.1, 0.9, 0.5, 0.9})
	assert.Equal(t, []int{1, 3, 2, 0}, ranked)
}
