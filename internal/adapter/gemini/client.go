package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pagetalk/internal/retrieval"
)

// ErrTimeout marks a model call that exceeded the configured deadline, so
// callers can tell a slow service apart from a failing one.
var ErrTimeout = errors.New("model call timed out")

// Client wraps the Gemini SDK for the two model surfaces this service
// needs: embeddings for indexing/search and generation for language
// normalization and answer synthesis. Every call runs under a bounded
// timeout; there are no retries.
type Client struct {
	client          *genai.Client
	embeddingModel  string
	generationModel string
	timeout         time.Duration
}

func NewClient(ctx context.Context, apiKey, embeddingModel, generationModel string, timeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		timeout:         timeout,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	em := c.client.EmbeddingModel(c.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, c.wrap("embed", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding received")
	}
	return res.Embedding.Values, nil
}

// EmbedBatch embeds all texts in a single API round trip.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.DebugContext(ctx, "embedding batch", "model", c.embeddingModel, "count", len(texts))

	em := c.client.EmbeddingModel(c.embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, c.wrap("embed batch", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("empty embedding received for text %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Generate sends a single free-form prompt and returns the model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.generative()
	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.wrap("generate", err)
	}
	return responseText(res)
}

// Chat sends question under the given system instruction, with history
// giving the model multi-turn context. History roles map human -> user and
// ai -> model; anything else is dropped.
func (c *Client) Chat(ctx context.Context, system string, history []retrieval.Turn, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.generative()
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	cs := model.StartChat()
	for _, turn := range history {
		var role string
		switch turn.Type {
		case "human":
			role = "user"
		case "ai":
			role = "model"
		default:
			continue
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	res, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", c.wrap("chat", err)
	}
	return responseText(res)
}

func (c *Client) generative() *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.generationModel)
	model.SetTemperature(0.3)
	return model
}

func (c *Client) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, op, c.timeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("model returned no text")
}
