package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type TaskStorage struct {
	*Storage
	coll *mongo.Collection
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	_, err := s.coll.InsertOne(ctx, toTaskDocument(taskToCreate))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: inserting task", err)
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	now := time.Now()
	taskToUpdate.UpdatedAt = &now

	doc := toTaskDocument(taskToUpdate)
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		logger.Error("Repository: updating task", err, zap.String("task_id", doc.ID))
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		logger.Error("Repository: deleting task", err, zap.String("task_id", id.String()))
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var doc taskDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: loading task", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("get task: %w", err)
	}
	return doc.toTask()
}

func (s *TaskStorage) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *TaskStorage) Recent(ctx context.Context, filter task.Filter, limit int) ([]*task.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, filter, opts)
}

func (s *TaskStorage) Count(ctx context.Context, filter task.Filter) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, toFilter(filter))
	if err != nil {
		logger.Error("Repository: counting tasks", err)
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (s *TaskStorage) CountBy(ctx context.Context, filter task.Filter, field task.Field) (map[string]int64, error) {
	key, err := groupField(field)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: toFilter(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + key},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Error("Repository: grouping tasks", err, zap.String("field", key))
		return nil, fmt.Errorf("count tasks by %s: %w", key, err)
	}
	defer cursor.Close(ctx)

	res := make(map[string]int64)
	for cursor.Next(ctx) {
		var group struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&group); err != nil {
			return nil, fmt.Errorf("decode group: %w", err)
		}
		res[group.Key] = group.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return res, nil
}

func (s *TaskStorage) find(ctx context.Context, filter task.Filter, opts *options.FindOptions) ([]*task.Task, error) {
	cursor, err := s.coll.Find(ctx, toFilter(filter), opts)
	if err != nil {
		logger.Error("Repository: querying tasks", err)
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*task.Task{}
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		t, err := doc.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := cursor.Err(); err != nil {
		logger.Error("Repository: iterating tasks", err)
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
