package tts

import (
	"context"
	"errors"
)

// Request holds the parameters for one synthesis call. Voice is the
// user-facing label; each backend resolves it to its own identifier, with
// a default for unmapped labels.
type Request struct {
	Text  string
	Voice string
}

// Result holds the synthesized audio as delivered by the provider: a
// base64-encoded buffer of headerless 16-bit PCM samples.
type Result struct {
	AudioBase64 string
	MimeType    string
}

// Provider is the interface for speech-synthesis backends.
type Provider interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
	Name() string
}

var (
	// ErrUpstreamUnavailable covers transport failures, timeouts and
	// non-success statuses from the speech API. Callers surface one
	// generic message and never retry: a silent retry would multiply
	// billed synthesis.
	ErrUpstreamUnavailable = errors.New("speech provider unavailable")

	// ErrUpstreamResponseMalformed means the provider answered but the
	// audio payload was missing from the response structure, for example
	// after a content-safety refusal.
	ErrUpstreamResponseMalformed = errors.New("speech provider returned no audio")
)
