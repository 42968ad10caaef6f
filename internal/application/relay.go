package application

import (
	"context"
	"fmt"
	"log/slog"

	"voice-relay/internal/domain"
)

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeMissingChat
	OutcomeUnauthorized
	OutcomeWelcomed
	OutcomeTranscribed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMissingChat:
		return "missing_chat"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeWelcomed:
		return "welcomed"
	case OutcomeTranscribed:
		return "transcribed"
	case OutcomeFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// Relay handles one inbound event at a time. It holds no per-request state
// and is safe for concurrent use when its collaborators are.
type Relay struct {
	auth     Authorizer
	fetcher  MediaFetcher
	stt      Transcriber
	notifier Notifier
	logger   *slog.Logger
}

func NewRelay(
	auth Authorizer,
	fetcher MediaFetcher,
	stt Transcriber,
	notifier Notifier,
	logger *slog.Logger,
) *Relay {
	return &Relay{
		auth:     auth,
		fetcher:  fetcher,
		stt:      stt,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle runs the reply sequence for ev. Failures inside the media chain are
// reported to the chat and yield OutcomeFailed with a nil error; a non-nil
// error means a reply could not be delivered at all.
func (r *Relay) Handle(ctx context.Context, ev domain.InboundEvent) (Outcome, error) {
	if ev.ChatID == 0 {
		return OutcomeMissingChat, nil
	}

	logger := r.logger.With("chat_id", ev.ChatID)

	if !r.auth.Authorize(ev.ChatID) {
		logger.Warn("unauthorized chat")
		if err := r.notifier.SendMessage(ctx, ev.ChatID, msgUnauthorized); err != nil {
			return OutcomeUnauthorized, fmt.Errorf("sending rejection: %w", err)
		}
		return OutcomeUnauthorized, nil
	}

	if ev.Text == domain.StartCommand {
		if err := r.notifier.SendMessage(ctx, ev.ChatID, msgWelcome); err != nil {
			return OutcomeWelcomed, fmt.Errorf("sending welcome: %w", err)
		}
		return OutcomeWelcomed, nil
	}

	if !ev.HasMedia() {
		return OutcomeIgnored, nil
	}

	text, err := r.transcribe(ctx, ev)
	if err != nil {
		logger.Error("transcription chain failed", "kind", domain.KindOf(err), "error", err)
		if sendErr := r.notifier.SendMessage(ctx, ev.ChatID, errorMessage(err)); sendErr != nil {
			return OutcomeFailed, fmt.Errorf("reporting %s error: %w", domain.KindOf(err), sendErr)
		}
		return OutcomeFailed, nil
	}

	logger.Info("transcribed", "chars", len(text))
	return OutcomeTranscribed, nil
}

func (r *Relay) transcribe(ctx context.Context, ev domain.InboundEvent) (string, error) {
	if err := r.notifier.SendMessage(ctx, ev.ChatID, msgProcessing); err != nil {
		return "", err
	}

	media, err := r.fetcher.FetchMedia(ctx, ev.MediaFileID())
	if err != nil {
		return "", err
	}

	r.logger.Debug("media fetched", "bytes", media.Size, "mime", media.MIMEType)

	if err := r.notifier.SendMessage(ctx, ev.ChatID, receivedMessage(media)); err != nil {
		return "", err
	}

	if err := r.notifier.SendMessage(ctx, ev.ChatID, msgSending); err != nil {
		return "", err
	}

	text, err := r.stt.Transcribe(ctx, media)
	if err != nil {
		return "", err
	}

	if err := r.notifier.SendMessage(ctx, ev.ChatID, resultMessage(text)); err != nil {
		return "", err
	}

	return text, nil
}
