package social

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LabeledEdge is a directed edge between two vertices carrying a set of
// social-relation labels.
type LabeledEdge struct {
	Head int64
	Tail int64
	Tags []int64
}

type edgeKey struct {
	head int64
	tail int64
}

// SocialNetwork holds a labeled social graph split into train and test
// edges. Vertex and tag names are interned to dense int64 IDs shared by
// both splits.
type SocialNetwork struct {
	// Vertex and tag name mappings
	VertexHash map[string]int64
	TagHash    map[string]int64
	VertexKeys []string
	TagKeys    []string

	// Edge splits
	TrainEdges []LabeledEdge
	TestEdges  []LabeledEdge

	// Observed (head, tail) pairs across both splits, used to reject
	// false negatives during corruption sampling
	edgeSet map[edgeKey]bool

	// Statistics
	NumVertices int64
	NumTags     int64
}

// NewSocialNetwork creates an empty social network.
func NewSocialNetwork() *SocialNetwork {
	return &SocialNetwork{
		VertexHash: make(map[string]int64),
		TagHash:    make(map[string]int64),
		VertexKeys: make([]string, 0),
		TagKeys:    make([]string, 0),
		edgeSet:    make(map[edgeKey]bool),
	}
}

// LoadTrainEdges loads training edges from a file.
// Format: head tail tag[,tag...]
// Example: "alice bob colleague,advisor"
func (sn *SocialNetwork) LoadTrainEdges(filename string) error {
	return sn.loadEdges(filename, &sn.TrainEdges)
}

// LoadTestEdges loads held-out edges from a file. Vertices and tags share
// the intern tables with the training split.
func (sn *SocialNetwork) LoadTestEdges(filename string) error {
	return sn.loadEdges(filename, &sn.TestEdges)
}

func (sn *SocialNetwork) loadEdges(filename string, dest *[]LabeledEdge) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	fmt.Println("Loading labeled edges from:", filename)

	scanner := bufio.NewScanner(file)
	lineCount := int64(0)

	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)

		if len(parts) < 3 {
			continue
		}

		head := sn.getOrCreateVertex(parts[0])
		tail := sn.getOrCreateVertex(parts[1])

		tagNames := strings.Split(parts[2], ",")
		tags := make([]int64, 0, len(tagNames))
		seen := make(map[int64]bool, len(tagNames))
		for _, name := range tagNames {
			if name == "" {
				continue
			}
			tid := sn.getOrCreateTag(name)
			if !seen[tid] {
				seen[tid] = true
				tags = append(tags, tid)
			}
		}
		if len(tags) == 0 {
			continue
		}

		*dest = append(*dest, LabeledEdge{Head: head, Tail: tail, Tags: tags})
		sn.edgeSet[edgeKey{head, tail}] = true

		lineCount++
		if lineCount%10000 == 0 {
			fmt.Printf("\r\t# of edges: %d", lineCount)
		}
	}

	fmt.Printf("\r\t# of edges: %d\n", lineCount)

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	sn.NumVertices = int64(len(sn.VertexKeys))
	sn.NumTags = int64(len(sn.TagKeys))

	fmt.Printf("Social network loaded:\n")
	fmt.Printf("\t%d vertices\n", sn.NumVertices)
	fmt.Printf("\t%d tags\n", sn.NumTags)

	return nil
}

// getOrCreateVertex gets or creates a vertex ID
func (sn *SocialNetwork) getOrCreateVertex(name string) int64 {
	if vid, exists := sn.VertexHash[name]; exists {
		return vid
	}

	vid := int64(len(sn.VertexKeys))
	sn.VertexHash[name] = vid
	sn.VertexKeys = append(sn.VertexKeys, name)
	return vid
}

// getOrCreateTag gets or creates a tag ID
func (sn *SocialNetwork) getOrCreateTag(name string) int64 {
	if tid, exists := sn.TagHash[name]; exists {
		return tid
	}

	tid := int64(len(sn.TagKeys))
	sn.TagHash[name] = tid
	sn.TagKeys = append(sn.TagKeys, name)
	return tid
}

// HasEdge reports whether (head, tail) is an observed edge in either split.
func (sn *SocialNetwork) HasEdge(head, tail int64) bool {
	return sn.edgeSet[edgeKey{head, tail}]
}

// AddEdge appends a training edge directly. Intended for programmatic
// dataset construction; file loading goes through LoadTrainEdges.
func (sn *SocialNetwork) AddEdge(head, tail string, tags []string) {
	h := sn.getOrCreateVertex(head)
	t := sn.getOrCreateVertex(tail)
	tids := make([]int64, 0, len(tags))
	for _, name := range tags {
		tids = append(tids, sn.getOrCreateTag(name))
	}
	sn.TrainEdges = append(sn.TrainEdges, LabeledEdge{Head: h, Tail: t, Tags: tids})
	sn.edgeSet[edgeKey{h, t}] = true
	sn.NumVertices = int64(len(sn.VertexKeys))
	sn.NumTags = int64(len(sn.TagKeys))
}

// AddTestEdge appends a held-out edge directly.
func (sn *SocialNetwork) AddTestEdge(head, tail string, tags []string) {
	h := sn.getOrCreateVertex(head)
	t := sn.getOrCreateVertex(tail)
	tids := make([]int64, 0, len(tags))
	for _, name := range tags {
		tids = append(tids, sn.getOrCreateTag(name))
	}
	sn.TestEdges = append(sn.TestEdges, LabeledEdge{Head: h, Tail: t, Tags: tids})
	sn.edgeSet[edgeKey{h, t}] = true
	sn.NumVertices = int64(len(sn.VertexKeys))
	sn.NumTags = int64(len(sn.TagKeys))
}

// GetVertexName returns the name of a vertex by ID
func (sn *SocialNetwork) GetVertexName(vid int64) string {
	if vid < 0 || vid >= int64(len(sn.VertexKeys)) {
		return ""
	}
	return sn.VertexKeys[vid]
}

// GetTagName returns the name of a tag by ID
func (sn *SocialNetwork) GetTagName(tid int64) string {
	if tid < 0 || tid >= int64(len(sn.TagKeys)) {
		return ""
	}
	return sn.TagKeys[tid]
}
