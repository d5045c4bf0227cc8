package ingest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pagetalk/internal/extract"
	"pagetalk/internal/session"
)

func doPost(t *testing.T, handle http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	handle(w, req)
	return w
}

func TestProcessWebpageHandler(t *testing.T) {
	t.Run("Ready Response", func(t *testing.T) {
		embedder := new(mockEmbedder)
		embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return(unitVectors(1), nil)
		h := NewHandler(newTestService(embedder, nil, nil, session.NewState()))

		w := doPost(t, h.ProcessWebpage, "/process_webpage", `{"content": "<p>Hello world.</p>"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp["status"])
		assert.Equal(t, "Processed 12 characters.", resp["message"])
	})

	t.Run("Missing Content", func(t *testing.T) {
		h := NewHandler(newTestService(new(mockEmbedder), nil, nil, session.NewState()))

		w := doPost(t, h.ProcessWebpage, "/process_webpage", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		assert.Contains(t, w.Body.String(), "No content provided")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		h := NewHandler(newTestService(new(mockEmbedder), nil, nil, session.NewState()))

		w := doPost(t, h.ProcessWebpage, "/process_webpage", `not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProcessYouTubeHandler(t *testing.T) {
	t.Run("Missing Video ID", func(t *testing.T) {
		h := NewHandler(newTestService(new(mockEmbedder), new(mockTranscripts), nil, session.NewState()))

		w := doPost(t, h.ProcessYouTube, "/process_youtube", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No YouTube Video ID provided")
	})

	t.Run("No Transcript Available", func(t *testing.T) {
		transcripts := new(mockTranscripts)
		transcripts.On("Transcript", mock.Anything, "abc123").
			Return("", extract.ErrNoTranscript)
		h := NewHandler(newTestService(new(mockEmbedder), transcripts, nil, session.NewState()))

		w := doPost(t, h.ProcessYouTube, "/process_youtube", `{"videoId": "abc123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "NO_TRANSCRIPT")
		assert.Contains(t, w.Body.String(), "No transcript available for this video.")
	})

	t.Run("Ready Response", func(t *testing.T) {
		transcripts := new(mockTranscripts)
		transcripts.On("Transcript", mock.Anything, "abc123").
			Return("A short transcript.", nil)
		embedder := new(mockEmbedder)
		embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return(unitVectors(1), nil)
		h := NewHandler(newTestService(embedder, transcripts, nil, session.NewState()))

		w := doPost(t, h.ProcessYouTube, "/process_youtube", `{"videoId": "abc123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ready")
	})
}

func TestProcessPDFHandler(t *testing.T) {
	t.Run("Missing URL", func(t *testing.T) {
		h := NewHandler(newTestService(new(mockEmbedder), nil, new(mockPDFs), session.NewState()))

		w := doPost(t, h.ProcessPDF, "/process_pdf", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No PDF URL provided")
	})

	t.Run("Fetch Failure", func(t *testing.T) {
		pdfs := new(mockPDFs)
		pdfs.On("Fetch", mock.Anything, mock.Anything).Return(nil, extract.ErrFetch)
		h := NewHandler(newTestService(new(mockEmbedder), nil, pdfs, session.NewState()))

		w := doPost(t, h.ProcessPDF, "/process_pdf", `{"pdf_url": "https://example.com/gone.pdf"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "FETCH_ERROR")
		assert.Contains(t, w.Body.String(), "Is the URL correct and public?")
	})

	t.Run("Error Envelope Carries Correlation ID", func(t *testing.T) {
		h := NewHandler(newTestService(new(mockEmbedder), nil, new(mockPDFs), session.NewState()))

		w := doPost(t, h.ProcessPDF, "/process_pdf", `{}`)

		var resp struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
			CorrelationID string `json:"correlationId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})
}
