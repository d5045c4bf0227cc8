package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"pagetalk/features/ask"
	"pagetalk/features/ingest"
	"pagetalk/internal/config"
	"pagetalk/internal/language"
	"pagetalk/internal/middleware"
	"pagetalk/internal/retrieval"
	"pagetalk/internal/session"
)

// AIClient is the hosted-model surface the pipeline depends on. The Gemini
// adapter satisfies it in production; tests plug in fakes.
type AIClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, system string, history []retrieval.Turn, question string) (string, error)
}

type App struct {
	Handler http.Handler
	Session *session.State

	port int
}

func New(
	cfg *config.Config,
	ai AIClient,
	transcripts ingest.TranscriptFetcher,
	pdfs ingest.PDFFetcher,
	queryLogger *retrieval.QueryLogger,
) *App {
	state := session.NewState()
	normalizer := language.NewNormalizer(ai)

	ingestService := ingest.NewService(ai, normalizer, transcripts, pdfs, state, cfg.ChunkSize, cfg.ChunkOverlap)
	ingestHandler := ingest.NewHandler(ingestService)

	retrievalService := retrieval.NewService(ai, ai, state, cfg.RetrievalTopK, queryLogger)
	askHandler := ask.NewHandler(retrievalService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /process_webpage", middleware.CorrelationID(enableCORS(ingestHandler.ProcessWebpage)))
	mux.Handle("POST /process_youtube", middleware.CorrelationID(enableCORS(ingestHandler.ProcessYouTube)))
	mux.Handle("POST /process_pdf", middleware.CorrelationID(enableCORS(ingestHandler.ProcessPDF)))
	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))

	// Method-scoped patterns never see OPTIONS, so preflights get their own
	// route through the same CORS closure.
	preflight := enableCORS(func(w http.ResponseWriter, r *http.Request) {})
	for _, path := range []string{"/process_webpage", "/process_youtube", "/process_pdf", "/ask"} {
		mux.Handle("OPTIONS "+path, preflight)
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{Handler: mux, Session: state, port: cfg.ServerPort}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
