package ports

import (
	"context"
	"time"

	"NoticeScanner/internal/domain"
)

// NoticeRepository persists captured notices and answers dedup existence
// checks. Each call is an independent store interaction with its own scoped
// session; nothing is held across a poll cycle.
type NoticeRepository interface {
	Exists(ctx context.Context, postID, category string) (bool, error)
	Insert(ctx context.Context, record domain.NoticeRecord) error
}

// Notifier announces newly captured notices to an operator channel.
type Notifier interface {
	PublishNotice(ctx context.Context, record domain.NoticeRecord) error
}

// Scheduler controls when poll cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
