package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagetalk/internal/text"
	"pagetalk/internal/vector"
)

func buildIndex(t *testing.T, content string) *vector.Index {
	t.Helper()
	idx, err := vector.Build(
		[]text.Chunk{{Ordinal: 0, Text: content}},
		[][]float32{{1, 0}},
	)
	require.NoError(t, err)
	return idx
}

func TestState(t *testing.T) {
	t.Run("Empty Until First Replace", func(t *testing.T) {
		s := NewState()
		idx, ok := s.Current()
		assert.False(t, ok)
		assert.Nil(t, idx)
	})

	t.Run("Replace Swaps Wholesale", func(t *testing.T) {
		s := NewState()
		a := buildIndex(t, "document a")
		b := buildIndex(t, "document b")

		s.Replace(a)
		cur, ok := s.Current()
		require.True(t, ok)
		assert.Same(t, a, cur)

		s.Replace(b)
		cur, ok = s.Current()
		require.True(t, ok)
		assert.Same(t, b, cur)
	})

	t.Run("Concurrent Readers And Writers", func(t *testing.T) {
		s := NewState()
		a := buildIndex(t, "document a")
		b := buildIndex(t, "document b")
		s.Replace(a)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					if j%2 == 0 {
						s.Replace(a)
					} else {
						s.Replace(b)
					}
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					if idx, ok := s.Current(); ok {
						_, _ = idx.Search([]float32{1, 0}, 1)
					}
				}
			}()
		}
		wg.Wait()
	})
}
