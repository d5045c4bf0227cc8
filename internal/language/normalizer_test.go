package language

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type scriptedGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	var resp string
	if i < len(g.responses) {
		resp = g.responses[i]
	}
	return resp, err
}

func TestToEnglish(t *testing.T) {
	t.Run("English Text Passes Through", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"en"}}
		n := NewNormalizer(gen)

		got := n.ToEnglish(context.Background(), "already english")
		assert.Equal(t, "already english", got)
		assert.Len(t, gen.prompts, 1)
	})

	t.Run("Region Variant Skips Translation", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"en-GB"}}
		n := NewNormalizer(gen)

		got := n.ToEnglish(context.Background(), "colour and flavour")
		assert.Equal(t, "colour and flavour", got)
		assert.Len(t, gen.prompts, 1)
	})

	t.Run("Substring Match Skips Translation", func(t *testing.T) {
		// Any detected code containing "en" short-circuits, even a wrong one.
		gen := &scriptedGenerator{responses: []string{"len"}}
		n := NewNormalizer(gen)

		got := n.ToEnglish(context.Background(), "text")
		assert.Equal(t, "text", got)
		assert.Len(t, gen.prompts, 1)
	})

	t.Run("Non-English Is Translated", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"fr", "The cat is on the table."}}
		n := NewNormalizer(gen)

		got := n.ToEnglish(context.Background(), "Le chat est sur la table.")
		assert.Equal(t, "The cat is on the table.", got)
		assert.Len(t, gen.prompts, 2)
		assert.Contains(t, gen.prompts[1], "Translate the following text to English")
	})

	t.Run("Detection Failure Keeps Original", func(t *testing.T) {
		gen := &scriptedGenerator{errs: []error{errors.New("model unavailable")}}
		n := NewNormalizer(gen)

		got := n.ToEnglish(context.Background(), "unverändert")
		assert.Equal(t, "unverändert", got)
	})

	t.Run("Translation Failure Keeps Original", func(t *testing.T) {
		gen := &scriptedGenerator{
			responses: []string{"de", ""},
			errs:      []error{nil, errors.New("model unavailable")},
		}
		n := NewNormalizer(gen)

		got := n.ToEnglish(context.Background(), "unverändert")
		assert.Equal(t, "unverändert", got)
	})

	t.Run("Detection Sample Is Bounded", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"en"}}
		n := NewNormalizer(gen)

		long := strings.Repeat("x", 5000)
		n.ToEnglish(context.Background(), long)
		assert.LessOrEqual(t, len(gen.prompts[0]), detectionSample+200)
	})

	t.Run("Multibyte Sample Stays Valid UTF-8", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"hi", "translated"}}
		n := NewNormalizer(gen)

		// 300 Devanagari runes, 900 bytes: a byte-indexed cut at 500 would
		// land mid-rune and corrupt the detection prompt.
		long := strings.Repeat("न", 300)
		n.ToEnglish(context.Background(), long)

		assert.True(t, utf8.ValidString(gen.prompts[0]))
		assert.LessOrEqual(t, utf8.RuneCountInString(gen.prompts[0]), detectionSample+200)
	})
}
