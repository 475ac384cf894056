package notification

import (
	"context"

	"tablebook/internal/domain"
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Fetcher interface {
	ListNotifications(ctx context.Context, token string) ([]domain.Notification, error)
}

type Acknowledger interface {
	MarkNotificationRead(ctx context.Context, token, id string) error
}

// Refresher reloads whatever the notifications are about, usually the
// booking list.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Presenter shows a notification and blocks until the user dismisses it.
// confirmed is false when the user declined or presentation was cut short.
type Presenter interface {
	Present(ctx context.Context, title, message string) (confirmed bool, err error)
}
