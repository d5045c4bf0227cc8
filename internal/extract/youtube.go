package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// languagePreference is the preference-ordered list of transcript languages.
// First match wins; videos with only other languages are rejected.
var languagePreference = []string{"en", "hi", "es", "de", "fr", "ja", "ko", "ru"}

// TranscriptClient talks to YouTube's timedtext API: one call to list the
// available transcript tracks for a video, one call to fetch the timed
// segments of a chosen track.
type TranscriptClient struct {
	client  *http.Client
	baseURL string
}

func NewTranscriptClient(timeout time.Duration) *TranscriptClient {
	return &TranscriptClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://video.google.com/timedtext",
	}
}

func (c *TranscriptClient) SetBaseURL(u string) {
	c.baseURL = u
}

type track struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
}

type trackList struct {
	Tracks []track `xml:"track"`
}

type segment struct {
	Start float64 `xml:"start,attr"`
	Text  string  `xml:",chardata"`
}

type timedText struct {
	Segments []segment `xml:"text"`
}

// Transcript returns the full transcript of videoID in the first preferred
// language that has a track, segment texts joined with single spaces in
// chronological order. ErrNoTranscript when no track matches or the video
// has transcripts disabled.
func (c *TranscriptClient) Transcript(ctx context.Context, videoID string) (string, error) {
	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("%w: video %s", ErrNoTranscript, videoID)
	}

	chosen, ok := pickTrack(tracks)
	if !ok {
		return "", fmt.Errorf("%w: video %s has no track in a supported language", ErrNoTranscript, videoID)
	}

	segments, err := c.fetchSegments(ctx, videoID, chosen.LangCode)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: video %s track %s is empty", ErrNoTranscript, videoID, chosen.LangCode)
	}
	return strings.Join(parts, " "), nil
}

// pickTrack walks the preference list and returns the first track whose
// language code matches it exactly or as a region prefix (en matches en-GB).
func pickTrack(tracks []track) (track, bool) {
	for _, pref := range languagePreference {
		for _, t := range tracks {
			if t.LangCode == pref || strings.HasPrefix(t.LangCode, pref+"-") {
				return t, true
			}
		}
	}
	return track{}, false
}

func (c *TranscriptClient) listTracks(ctx context.Context, videoID string) ([]track, error) {
	q := url.Values{"type": {"list"}, "v": {videoID}}
	var list trackList
	if err := c.get(ctx, q, &list); err != nil {
		return nil, err
	}
	return list.Tracks, nil
}

func (c *TranscriptClient) fetchSegments(ctx context.Context, videoID, lang string) ([]segment, error) {
	q := url.Values{"lang": {lang}, "v": {videoID}}
	var tt timedText
	if err := c.get(ctx, q, &tt); err != nil {
		return nil, err
	}
	return tt.Segments, nil
}

func (c *TranscriptClient) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("timedtext request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("timedtext api error: %d", resp.StatusCode)
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		// Transcripts disabled: the API answers 200 with an empty body.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode timedtext response: %w", err)
	}
	return nil
}
