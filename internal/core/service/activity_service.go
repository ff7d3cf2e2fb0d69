package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis) for activity events.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, actorID, action, resourceID string, ts time.Time) (bool, error)
	Mark(ctx context.Context, actorID, action, resourceID string, ts time.Time) error
}

type activityService struct {
	repo  ports.ActivityRepository
	dedup DedupChecker
	log   zerolog.Logger
}

// NewActivityService returns the ActivityService consumed by the queue
// dispatcher workers.
func NewActivityService(repo ports.ActivityRepository, dedup DedupChecker, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, dedup: dedup, log: log}
}

// Process deduplicates and persists a single activity event. Dedup store
// failures are non-fatal: losing a duplicate check is preferable to losing
// the audit record.
func (s *activityService) Process(ctx context.Context, in ports.ActivityInput) error {
	if s.dedup != nil {
		isDup, err := s.dedup.IsDuplicate(ctx, in.ActorID, in.Action, in.ResourceID, in.Timestamp)
		if err != nil {
			s.log.Warn().Err(err).Str("action", in.Action).Msg("dedup check failed, processing anyway")
		} else if isDup {
			s.log.Debug().Str("action", in.Action).Str("resource_id", in.ResourceID).Msg("duplicate activity skipped")
			return nil
		}

		if markErr := s.dedup.Mark(ctx, in.ActorID, in.Action, in.ResourceID, in.Timestamp); markErr != nil {
			s.log.Warn().Err(markErr).Str("action", in.Action).Msg("failed to set dedup key")
		}
	}

	activity := &domain.Activity{
		ActorID:    in.ActorID,
		Action:     in.Action,
		ResourceID: in.ResourceID,
		Detail:     in.Detail,
		Timestamp:  in.Timestamp,
	}
	if err := s.repo.Insert(ctx, activity); err != nil {
		return err
	}

	s.log.Debug().
		Str("actor_id", in.ActorID).
		Str("action", in.Action).
		Str("resource_id", in.ResourceID).
		Msg("activity recorded")
	return nil
}
