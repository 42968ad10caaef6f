package application

import "context"

type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
