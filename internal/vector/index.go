package vector

import (
	"errors"
	"math"
	"sort"

	"pagetalk/internal/text"
)

var (
	ErrEmpty    = errors.New("no vectors to index")
	ErrMismatch = errors.New("chunks and vectors length mismatch")
	ErrDim      = errors.New("vector dimension mismatch")
)

// Index is an immutable in-memory similarity index over (chunk, embedding)
// pairs. Brute-force cosine similarity; fine for a single document's worth
// of chunks. Build it fully, then publish — readers never see partial state.
type Index struct {
	dim     int
	chunks  []text.Chunk
	vectors [][]float32
	norms   []float32
}

type Result struct {
	Chunk text.Chunk
	Score float32
}

func Build(chunks []text.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, ErrMismatch
	}
	if len(vectors) == 0 {
		return nil, ErrEmpty
	}

	dim := len(vectors[0])
	norms := make([]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim || dim == 0 {
			return nil, ErrDim
		}
		norms[i] = norm(v)
	}

	idx := &Index{
		dim:     dim,
		chunks:  append([]text.Chunk(nil), chunks...),
		vectors: append([][]float32(nil), vectors...),
		norms:   norms,
	}
	return idx, nil
}

func (i *Index) Len() int { return len(i.chunks) }

// Search returns the topK chunks ranked by cosine similarity to query.
func (i *Index) Search(query []float32, topK int) ([]Result, error) {
	if len(query) != i.dim {
		return nil, ErrDim
	}
	if topK <= 0 {
		topK = 4
	}

	qn := norm(query)
	results := make([]Result, len(i.chunks))
	for j := range i.vectors {
		score := float32(0)
		if qn > 0 && i.norms[j] > 0 {
			score = dot(i.vectors[j], query) / (i.norms[j] * qn)
		}
		results[j] = Result{Chunk: i.chunks[j], Score: score}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
