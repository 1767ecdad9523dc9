package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI TTS backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: the library's public endpoint
	Model   string // default: "tts-1"
}

// OpenAI synthesizes speech through the OpenAI audio API, requesting raw
// PCM so the output shares the Gemini envelope path (24 kHz, 16-bit, mono).
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// openaiVoices maps the catalog labels onto the closest OpenAI voices.
var openaiVoices = map[string]openai.SpeechVoice{
	"Amel":  openai.VoiceNova,
	"Wael":  openai.VoiceOnyx,
	"Imene": openai.VoiceShimmer,
	"Amine": openai.VoiceEcho,
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = string(openai.TTSModel1)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Synthesize(ctx context.Context, req Request) (*Result, error) {
	voice, ok := openaiVoices[req.Voice]
	if !ok {
		voice = openai.VoiceAlloy
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.Model),
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, apiErr.HTTPStatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrUpstreamUnavailable, err)
	}
	if len(pcm) == 0 {
		return nil, ErrUpstreamResponseMalformed
	}

	return &Result{
		AudioBase64: base64.StdEncoding.EncodeToString(pcm),
		MimeType:    "audio/L16;rate=24000",
	}, nil
}
