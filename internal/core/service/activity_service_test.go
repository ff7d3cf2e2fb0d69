package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/ports"
)

type stubDedup struct {
	seen map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (s *stubDedup) key(actorID, action, resourceID string, ts time.Time) string {
	return actorID + "/" + action + "/" + resourceID + "/" + ts.UTC().Format(time.RFC3339)
}

func (s *stubDedup) IsDuplicate(_ context.Context, actorID, action, resourceID string, ts time.Time) (bool, error) {
	return s.seen[s.key(actorID, action, resourceID, ts)], nil
}

func (s *stubDedup) Mark(_ context.Context, actorID, action, resourceID string, ts time.Time) error {
	s.seen[s.key(actorID, action, resourceID, ts)] = true
	return nil
}

func TestActivityService_Process(t *testing.T) {
	repo := &memActivityRepo{}
	svc := NewActivityService(repo, newStubDedup(), zerolog.Nop())

	in := ports.ActivityInput{
		ActorID:    "u1",
		Action:     "task_created",
		ResourceID: "t1",
		Detail:     "ship release",
		Timestamp:  time.Now().UTC(),
	}
	if err := svc.Process(context.Background(), in); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(repo.inserted))
	}
	got := repo.inserted[0]
	if got.ActorID != "u1" || got.Action != "task_created" || got.ResourceID != "t1" {
		t.Fatalf("stored activity = %+v", got)
	}
}

func TestActivityService_SkipsDuplicates(t *testing.T) {
	repo := &memActivityRepo{}
	svc := NewActivityService(repo, newStubDedup(), zerolog.Nop())

	in := ports.ActivityInput{
		ActorID:    "u1",
		Action:     "task_updated",
		ResourceID: "t1",
		Timestamp:  time.Now().UTC(),
	}
	for i := 0; i < 3; i++ {
		if err := svc.Process(context.Background(), in); err != nil {
			t.Fatalf("Process %d returned error: %v", i, err)
		}
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1 after dedup", len(repo.inserted))
	}
}

func TestActivityService_NoDedupStore(t *testing.T) {
	repo := &memActivityRepo{}
	svc := NewActivityService(repo, nil, zerolog.Nop())

	in := ports.ActivityInput{ActorID: "u1", Action: "task_deleted", ResourceID: "t1", Timestamp: time.Now().UTC()}
	if err := svc.Process(context.Background(), in); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if err := svc.Process(context.Background(), in); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("inserted %d records, want 2 without dedup", len(repo.inserted))
	}
}
