package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/ports"
)

type captureService struct {
	mu     sync.Mutex
	events []ports.ActivityInput
	done   chan struct{}
	want   int
}

func newCaptureService(want int) *captureService {
	return &captureService{done: make(chan struct{}), want: want}
}

func (s *captureService) Process(_ context.Context, in ports.ActivityInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, in)
	if len(s.events) == s.want {
		close(s.done)
	}
	return nil
}

func (s *captureService) wait(t *testing.T) []ports.ActivityInput {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %d events", s.want)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.ActivityInput(nil), s.events...)
}

func TestDispatcher_ProcessesAllEvents(t *testing.T) {
	svc := newCaptureService(20)
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		d.Enqueue(ports.ActivityInput{ActorID: "u" + string(rune('a'+i%5)), Action: "task_created"})
	}

	got := svc.wait(t)
	if len(got) != 20 {
		t.Fatalf("processed %d events, want 20", len(got))
	}
}

func TestDispatcher_PerActorOrdering(t *testing.T) {
	const perActor = 10
	svc := newCaptureService(perActor * 2)
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// interleave two actors; each actor's events must come out in order
	for i := 0; i < perActor; i++ {
		d.Enqueue(ports.ActivityInput{ActorID: "alice", Action: "task_updated", ResourceID: resourceID(i)})
		d.Enqueue(ports.ActivityInput{ActorID: "bob", Action: "task_updated", ResourceID: resourceID(i)})
	}

	byActor := make(map[string][]string)
	for _, e := range svc.wait(t) {
		byActor[e.ActorID] = append(byActor[e.ActorID], e.ResourceID)
	}
	for actor, seq := range byActor {
		for i, id := range seq {
			if id != resourceID(i) {
				t.Fatalf("actor %s: event %d = %s, out of order (%v)", actor, i, id, seq)
			}
		}
	}
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())
	for _, actor := range []string{"", "u1", "alice", "a-very-long-actor-identifier"} {
		first := d.shardIndex(actor)
		for i := 0; i < 10; i++ {
			if got := d.shardIndex(actor); got != first {
				t.Fatalf("shardIndex(%q) unstable: %d then %d", actor, first, got)
			}
		}
		if first < 0 || first >= 8 {
			t.Fatalf("shardIndex(%q) = %d, out of range", actor, first)
		}
	}
}

func resourceID(i int) string {
	return "t" + string(rune('0'+i))
}
