// Package generation drives the speech-generation flow: fresh profile
// read, quota gate, one relay call, atomic usage bookkeeping.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dardja-ai/voice-backend/internal/audio"
	"github.com/dardja-ai/voice-backend/internal/models"
	"github.com/dardja-ai/voice-backend/internal/quota"
	"github.com/dardja-ai/voice-backend/internal/tts"
	"github.com/dardja-ai/voice-backend/internal/usagelog"
)

// DefaultStylePrompt is prepended when the client sends no style prompt of
// its own.
const DefaultStylePrompt = "Please generate a voiceover in the Algerian Arabic dialect with a marketing tone that is energetic, persuasive, and friendly. The voice should sound like it's speaking directly to the customer, encouraging them to take action. The tone should be confident, enthusiastic, and engaging, with a medium to fast pace and natural conversational rhythm. Here's the script to read:"

// ProfileStore is the subset of the profile service the flow needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	MarkTrialUsed(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Recorder receives one entry per relay attempt.
type Recorder interface {
	Log(ctx context.Context, e usagelog.Entry) error
}

// DownloadStore keeps finished WAV files around briefly for download.
type DownloadStore interface {
	Put(ctx context.Context, id uuid.UUID, wav []byte) error
}

// ErrEmptyScript rejects whitespace-only scripts before any quota or
// provider work.
var ErrEmptyScript = errors.New("empty script")

// DeniedError reports a generation blocked by the quota gate, before any
// contact with the speech provider.
type DeniedError struct {
	Reason quota.Reason
}

func (e *DeniedError) Error() string {
	return "generation denied: " + string(e.Reason)
}

type Request struct {
	Text        string `json:"text"`
	StylePrompt string `json:"style_prompt"`
	Voice       string `json:"voice"`
}

type Output struct {
	AudioBase64      string `json:"audio"`
	MimeType         string `json:"mime_type"`
	DownloadID       string `json:"download_id,omitempty"`
	UsageCount       int    `json:"usage_count"`
	MaxGenerations   int    `json:"max_generations"`
	QuotaJustReached bool   `json:"quota_just_reached"`
}

type Service struct {
	profiles  ProfileStore
	provider  tts.Provider
	recorder  Recorder
	downloads DownloadStore
}

// NewService wires the flow. recorder and downloads may be nil; the flow
// degrades to no usage rows and no download links.
func NewService(profiles ProfileStore, provider tts.Provider, recorder Recorder, downloads DownloadStore) *Service {
	return &Service{profiles: profiles, provider: provider, recorder: recorder, downloads: downloads}
}

// Generate runs one synthesis for the given user. The profile is re-read
// immediately before the decision so that concurrent admin changes are
// honored; the usage increment happens only after audio arrives and only
// if ctx is still live, so a cancelled request never spends quota.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, req Request) (*Output, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if d := quota.Check(p); !d.Allowed {
		// Close the trial for good so an admin count reset alone does
		// not silently reopen it. Idempotent.
		if err := s.profiles.MarkTrialUsed(ctx, userID); err != nil {
			slog.Warn("mark trial used", "user_id", userID, "error", err)
		}
		return nil, &DeniedError{Reason: d.Reason}
	}

	script := strings.TrimSpace(req.Text)
	if script == "" {
		return nil, ErrEmptyScript
	}
	if d := quota.CheckScript(script, p); !d.Allowed {
		return nil, &DeniedError{Reason: d.Reason}
	}

	style := req.StylePrompt
	if style == "" {
		style = DefaultStylePrompt
	}

	start := time.Now()
	result, synthErr := s.provider.Synthesize(ctx, tts.Request{
		Text:  style + " " + script,
		Voice: req.Voice,
	})
	s.record(userID, req.Voice, len([]rune(script)), time.Since(start), synthErr == nil)
	if synthErr != nil {
		return nil, synthErr
	}

	// The caller may have aborted while the provider was still talking.
	// A result that arrives after cancellation must not be applied.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A payload that cannot be framed as PCM is a failed generation.
	// It fails the request and must not spend quota.
	wav, err := audio.WrapBase64(result.AudioBase64)
	if err != nil {
		return nil, err
	}

	updated, err := s.profiles.IncrementUsage(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	out := &Output{
		AudioBase64:      result.AudioBase64,
		MimeType:         result.MimeType,
		UsageCount:       updated.UsageCount,
		MaxGenerations:   updated.MaxGenerations,
		QuotaJustReached: quota.Reached(updated),
	}

	if s.downloads != nil {
		id := uuid.New()
		if err := s.downloads.Put(ctx, id, wav); err != nil {
			slog.Warn("store download", "user_id", userID, "error", err)
		} else {
			out.DownloadID = id.String()
		}
	}

	return out, nil
}

func (s *Service) record(userID uuid.UUID, voice string, chars int, latency time.Duration, success bool) {
	if s.recorder == nil {
		return
	}
	// Detached context: the log row should land even when the request
	// context was cancelled mid-flight.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entry := usagelog.Entry{
		UserID:     userID,
		Voice:      voice,
		Provider:   s.provider.Name(),
		Characters: chars,
		LatencyMs:  latency.Milliseconds(),
		Success:    success,
	}
	if err := s.recorder.Log(ctx, entry); err != nil {
		slog.Warn("log generation", "user_id", userID, "error", err)
	}
}
