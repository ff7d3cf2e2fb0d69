package domain

import "time"

// Activity actions recorded in the audit feed.
const (
	ActivityTaskCreated  = "task_created"
	ActivityTaskUpdated  = "task_updated"
	ActivityTaskDeleted  = "task_deleted"
	ActivityUserPromoted = "user_promoted"
	ActivityUserDemoted  = "user_demoted"
	ActivityUserDeleted  = "user_deleted"
)

// Activity is a single audit record: who did what to which resource.
type Activity struct {
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
