package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pagetalk/internal/middleware"
	"pagetalk/internal/vector"
)

var (
	// ErrNotReady means a question arrived before any document was ingested.
	ErrNotReady = errors.New("no document has been processed yet")
	// ErrSynthesis wraps any downstream failure (embedding, retrieval,
	// generation) once an index exists.
	ErrSynthesis = errors.New("answer synthesis failed")
)

// Turn is one prior conversation message, as supplied by the caller with
// each question. Type is "human" or "ai"; anything else is ignored.
type Turn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Generator interface {
	Chat(ctx context.Context, system string, history []Turn, question string) (string, error)
}

type Session interface {
	Current() (*vector.Index, bool)
}

const systemTemplate = `You are a helpful assistant. Your primary goal is to answer questions about the webpage, PDF, or video transcript context provided.
First, try to answer the user's question based *only* on the context document provided.
If the information *is* in the context, provide a detailed answer based on it.
If the information is *not* in the context, politely tell the user you couldn't find it on the page, and then try to answer their question as a general AI assistant.
Always format your answer to be clear and easy to read. Use bullet points or short paragraphs if appropriate.

Here is the context:
%s`

type Service struct {
	embedder  Embedder
	generator Generator
	session   Session
	topK      int
	logger    *QueryLogger
}

func NewService(e Embedder, g Generator, s Session, topK int, l *QueryLogger) *Service {
	return &Service{embedder: e, generator: g, session: s, topK: topK, logger: l}
}

// Answer retrieves the chunks most similar to question from the current
// index and asks the generation model for a grounded answer, with history
// giving multi-turn context. The caller owns conversation state; nothing is
// persisted here.
func (s *Service) Answer(ctx context.Context, question string, history []Turn) (string, error) {
	idx, ok := s.session.Current()
	if !ok {
		return "", ErrNotReady
	}

	start := time.Now()

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: embed question: %w", ErrSynthesis, err)
	}

	results, err := idx.Search(queryVec, s.topK)
	if err != nil {
		return "", fmt.Errorf("%w: search index: %w", ErrSynthesis, err)
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk.Text
	}
	system := fmt.Sprintf(systemTemplate, strings.Join(contexts, "\n\n"))

	answer, err := s.generator.Chat(ctx, system, history, question)
	if err != nil {
		return "", fmt.Errorf("%w: generate: %w", ErrSynthesis, err)
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:         question,
			NumChunks:     len(results),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}
	return answer, nil
}
