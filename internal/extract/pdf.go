package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFFetcher downloads remote PDF documents with a bounded timeout.
type PDFFetcher struct {
	client *http.Client
}

func NewPDFFetcher(timeout time.Duration) *PDFFetcher {
	return &PDFFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url and returns the raw bytes. Network failures and
// non-2xx statuses both map to ErrFetch.
func (f *PDFFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	return data, nil
}

// PDF parses data as a PDF and extracts text page by page in page order,
// pages joined with a newline. ErrNoContent when nothing is extractable
// (e.g. a scanned, image-only document).
func PDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}

	text := strings.Join(pages, "\n")
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
