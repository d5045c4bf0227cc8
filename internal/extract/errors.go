package extract

import "errors"

var (
	// ErrNoContent means the source yielded no usable text.
	ErrNoContent = errors.New("no extractable text")
	// ErrFetch means the remote document could not be downloaded.
	ErrFetch = errors.New("fetch failed")
	// ErrNoTranscript means no transcript track matched the language
	// preference list, or transcripts are disabled for the video.
	ErrNoTranscript = errors.New("no transcript available")
)
