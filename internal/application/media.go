package application

import (
	"context"

	"voice-relay/internal/domain"
)

type MediaFetcher interface {
	FetchMedia(ctx context.Context, fileID string) (domain.MediaPayload, error)
}
