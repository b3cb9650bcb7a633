package social

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEdgeFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edges.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestLoadTrainEdges(t *testing.T) {
	path := writeEdgeFile(t, "alice bob colleague,advisor\nbob carol colleague\ncarol alice friend\n")

	sn := NewSocialNetwork()
	require.NoError(t, sn.LoadTrainEdges(path))

	assert.Equal(t, int64(3), sn.NumVertices)
	assert.Equal(t, int64(3), sn.NumTags)
	require.Len(t, sn.TrainEdges, 3)

	first := sn.TrainEdges[0]
	assert.Equal(t, "alice", sn.GetVertexName(first.Head))
	assert.Equal(t, "bob", sn.GetVertexName(first.Tail))
	require.Len(t, first.Tags, 2)
	assert.Equal(t, "colleague", sn.GetTagName(first.Tags[0]))
	assert.Equal(t, "advisor", sn.GetTagName(first.Tags[1]))
}

func TestLoadTrainEdgesSkipsMalformedLines(t *testing.T) {
	path := writeEdgeFile(t, "alice bob colleague\nmalformed\nbob carol\n\ncarol alice friend\n")

	sn := NewSocialNetwork()
	require.NoError(t, sn.LoadTrainEdges(path))

	assert.Len(t, sn.TrainEdges, 2)
}

func TestLoadTrainEdgesDeduplicatesTags(t *testing.T) {
	path := writeEdgeFile(t, "alice bob colleague,colleague,advisor\n")

	sn := NewSocialNetwork()
	require.NoError(t, sn.LoadTrainEdges(path))

	require.Len(t, sn.TrainEdges, 1)
	assert.Len(t, sn.TrainEdges[0].Tags, 2)
}

func TestLoadTestEdgesSharesInternTables(t *testing.T) {
	trainPath := writeEdgeFile(t, "alice bob colleague\n")
	testPath := writeEdgeFile(t, "bob dave advisor\n")

	sn := NewSocialNetwork()
	require.NoError(t, sn.LoadTrainEdges(trainPath))
	require.NoError(t, sn.LoadTestEdges(testPath))

	assert.Equal(t, int64(3), sn.NumVertices)
	assert.Equal(t, int64(2), sn.NumTags)
	require.Len(t, sn.TestEdges, 1)
	assert.Equal(t, sn.VertexHash["bob"], sn.TestEdges[0].Head)
}

func TestHasEdge(t *testing.T) {
	sn := NewSocialNetwork()
	sn.AddEdge("a", "b", []string{"x"})
	sn.AddTestEdge("b", "c", []string{"x"})

	assert.True(t, sn.HasEdge(sn.VertexHash["a"], sn.VertexHash["b"]))
	assert.True(t, sn.HasEdge(sn.VertexHash["b"], sn.VertexHash["c"]))
	assert.False(t, sn.HasEdge(sn.VertexHash["b"], sn.VertexHash["a"]))
}

func TestLoadTrainEdgesMissingFile(t *testing.T) {
	sn := NewSocialNetwork()
	assert.Error(t, sn.LoadTrainEdges(filepath.Join(t.TempDir(), "missing.txt")))
}
