package ports

import (
	"context"
	"time"

	"github.com/taskhub/task-system/internal/core/domain"
)

// ActivityInput is the DTO handed from services to the activity pipeline.
type ActivityInput struct {
	ActorID    string
	Action     string
	ResourceID string
	Detail     string
	Timestamp  time.Time
}

// ActivityRecorder enqueues activity events for asynchronous processing.
type ActivityRecorder interface {
	Enqueue(event ActivityInput)
}

// ActivityService processes enqueued activity events.
type ActivityService interface {
	Process(ctx context.Context, event ActivityInput) error
}

// ActivityRepository persists the audit feed.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.Activity) error
	Recent(ctx context.Context, limit int) ([]*domain.Activity, error)
}
