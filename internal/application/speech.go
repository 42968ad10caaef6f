package application

import (
	"context"

	"voice-relay/internal/domain"
)

type Transcriber interface {
	Transcribe(ctx context.Context, media domain.MediaPayload) (string, error)
}

// NoopTranscriber fails every call. Used when no OpenAI key is configured.
type NoopTranscriber struct{}

func (n *NoopTranscriber) Transcribe(_ context.Context, _ domain.MediaPayload) (string, error) {
	return "", domain.NewError(domain.KindTranscriptionAPI,
		"🔄 Transcription API Error:\nspeech-to-text not configured: set openai.api_key", nil)
}
