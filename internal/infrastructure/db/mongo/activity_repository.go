package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhub/task-system/internal/core/domain"
)

const activityCollection = "activity"

// ActivityRepository persists the audit feed written by the activity
// workers.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

type activityDoc struct {
	ActorID    string `bson:"actor_id"`
	Action     string `bson:"action"`
	ResourceID string `bson:"resource_id"`
	Detail     string `bson:"detail,omitempty"`
	Timestamp  int64  `bson:"timestamp"`
}

func (r *ActivityRepository) Insert(ctx context.Context, a *domain.Activity) error {
	doc := activityDoc{
		ActorID:    a.ActorID,
		Action:     a.Action,
		ResourceID: a.ResourceID,
		Detail:     a.Detail,
		Timestamp:  a.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*domain.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*domain.Activity
	for cursor.Next(ctx) {
		var doc activityDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		activities = append(activities, &domain.Activity{
			ActorID:    doc.ActorID,
			Action:     doc.Action,
			ResourceID: doc.ResourceID,
			Detail:     doc.Detail,
			Timestamp:  unixToTime(doc.Timestamp),
		})
	}
	return activities, cursor.Err()
}
