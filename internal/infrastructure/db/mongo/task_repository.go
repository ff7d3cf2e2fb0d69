package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

const tasksCollection = "tasks"

// TaskRepository persists tasks. It also reads the users collection to
// attach owner projections to list results.
type TaskRepository struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		coll:  db.Collection(tasksCollection),
		users: db.Collection(usersCollection),
	}
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

func (d *taskDoc) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		OwnerID:     d.OwnerID.Hex(),
		CreatedAt:   unixToTime(d.CreatedAt),
		UpdatedAt:   unixToTime(d.UpdatedAt),
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ownerOID, err := primitive.ObjectIDFromHex(task.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}

	doc := taskDoc{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		OwnerID:     ownerOID,
		CreatedAt:   task.CreatedAt.Unix(),
		UpdatedAt:   task.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	created := *task
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	var doc taskDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// Update writes title, description, status, and updated_at. The owner
// reference is deliberately absent from the update document.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(task.ID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	update := bson.M{"$set": bson.M{
		"title":       task.Title,
		"description": task.Description,
		"status":      string(task.Status),
		"updated_at":  task.UpdatedAt.Unix(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil
	}
	if _, err := r.coll.DeleteMany(ctx, bson.M{"owner_id": oid}); err != nil {
		return fmt.Errorf("delete tasks by owner: %w", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.ListTasksFilter) ([]*ports.TaskWithOwner, int64, error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.OwnerID)
		if err != nil {
			return nil, 0, nil
		}
		query["owner_id"] = oid
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks, err := decodeTasks(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	withOwners, err := r.attachOwners(ctx, tasks)
	if err != nil {
		return nil, 0, err
	}
	return withOwners, total, nil
}

func (r *TaskRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	query := bson.M{}
	if ownerID != "" {
		oid, err := primitive.ObjectIDFromHex(ownerID)
		if err != nil {
			return 0, nil
		}
		query["owner_id"] = oid
	}
	n, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID string) (map[domain.TaskStatus]int64, error) {
	match := bson.M{}
	if ownerID != "" {
		oid, err := primitive.ObjectIDFromHex(ownerID)
		if err != nil {
			return map[domain.TaskStatus]int64{}, nil
		}
		match["owner_id"] = oid
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.TaskStatus]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode status count: %w", err)
		}
		counts[domain.TaskStatus(row.Status)] = row.Count
	}
	return counts, cursor.Err()
}

func (r *TaskRepository) Recent(ctx context.Context, limit int) ([]*ports.TaskWithOwner, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks, err := decodeTasks(ctx, cursor)
	if err != nil {
		return nil, err
	}
	return r.attachOwners(ctx, tasks)
}

func decodeTasks(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for cursor.Next(ctx) {
		var doc taskDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, doc.toDomain())
	}
	return tasks, cursor.Err()
}

// attachOwners batch-fetches the distinct owners of the given tasks and
// pairs each task with its owner projection. Missing owners (deleted
// accounts) leave the projection nil.
func (r *TaskRepository) attachOwners(ctx context.Context, tasks []*domain.Task) ([]*ports.TaskWithOwner, error) {
	result := make([]*ports.TaskWithOwner, len(tasks))
	if len(tasks) == 0 {
		return result, nil
	}

	seen := make(map[string]struct{})
	var ids []primitive.ObjectID
	for _, t := range tasks {
		if _, ok := seen[t.OwnerID]; ok {
			continue
		}
		seen[t.OwnerID] = struct{}{}
		if oid, err := primitive.ObjectIDFromHex(t.OwnerID); err == nil {
			ids = append(ids, oid)
		}
	}

	owners := make(map[string]*domain.TaskOwner, len(ids))
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("fetch task owners: %w", err)
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task owner: %w", err)
		}
		owners[doc.ID.Hex()] = &domain.TaskOwner{ID: doc.ID.Hex(), Name: doc.Name, Email: doc.Email}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("fetch task owners: %w", err)
	}

	for i, t := range tasks {
		result[i] = &ports.TaskWithOwner{Task: t, Owner: owners[t.OwnerID]}
	}
	return result, nil
}
