package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"pagetalk/internal/extract"
	"pagetalk/internal/session"
	"pagetalk/internal/text"
	"pagetalk/internal/vector"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Normalizer interface {
	ToEnglish(ctx context.Context, text string) string
}

type TranscriptFetcher interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

type PDFFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Service runs the ingestion pipeline: extract text from the source, chunk
// it, embed every chunk, build a fresh index and swap it into the session.
// Each ingestion replaces whatever was indexed before.
type Service struct {
	embedder     Embedder
	normalizer   Normalizer
	transcripts  TranscriptFetcher
	pdfs         PDFFetcher
	session      *session.State
	chunkSize    int
	chunkOverlap int
}

func NewService(e Embedder, n Normalizer, t TranscriptFetcher, p PDFFetcher, s *session.State, chunkSize, chunkOverlap int) *Service {
	return &Service{
		embedder:     e,
		normalizer:   n,
		transcripts:  t,
		pdfs:         p,
		session:      s,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// ProcessWebpage indexes the visible text of raw HTML markup. Returns the
// extracted character count.
func (s *Service) ProcessWebpage(ctx context.Context, markup string) (int, error) {
	doc, err := extract.Webpage(markup)
	if err != nil {
		return 0, err
	}
	return s.index(ctx, doc, "webpage")
}

// ProcessYouTube fetches the video's transcript, normalizes it to English
// and indexes the result.
func (s *Service) ProcessYouTube(ctx context.Context, videoID string) (int, error) {
	raw, err := s.transcripts.Transcript(ctx, videoID)
	if err != nil {
		return 0, err
	}
	doc := s.normalizer.ToEnglish(ctx, raw)
	return s.index(ctx, doc, "youtube")
}

// ProcessPDF downloads the PDF at url, extracts its text page by page and
// indexes the result.
func (s *Service) ProcessPDF(ctx context.Context, url string) (int, error) {
	data, err := s.pdfs.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	doc, err := extract.PDF(data)
	if err != nil {
		return 0, err
	}
	return s.index(ctx, doc, "pdf")
}

func (s *Service) index(ctx context.Context, doc, kind string) (int, error) {
	chunks := text.Split(doc, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return 0, extract.ErrNoContent
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	idx, err := vector.Build(chunks, vectors)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	// The previous index is dropped only once the new one is complete, so
	// concurrent questions see one consistent snapshot or the other.
	s.session.Replace(idx)

	slog.InfoContext(ctx, "document indexed", "kind", kind, "characters", len(doc), "chunks", len(chunks))
	return len(doc), nil
}
