// internal/repository/mongo/completion_repo.go
package mongo

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const completionCollectionName = "completions"

// completionDoc is the wire shape of a completion event.
type completionDoc struct {
	ID            string `bson:"_id"`
	CoachID       string `bson:"coachId"`
	TraineeID     string `bson:"traineeId"`
	PlanID        string `bson:"planId"`
	PlanName      string `bson:"planName"`
	CompletedAtMs int64  `bson:"completedAtEpochMs"`
}

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion repository.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Create appends one immutable completion event. Events are never updated
// or deleted; InsertOne (not upsert) enforces append-only semantics.
func (r *mongoCompletionRepository) Create(ctx context.Context, event *domain.CompletionEvent) error {
	if event.ID == "" || event.CoachID == "" || event.TraineeID == "" || event.PlanID == "" {
		return errors.New("completion event requires id, coachId, traineeId, and planId")
	}
	doc := completionDoc{
		ID:            event.ID,
		CoachID:       event.CoachID,
		TraineeID:     event.TraineeID,
		PlanID:        event.PlanID,
		PlanName:      event.PlanName,
		CompletedAtMs: toEpochMs(event.CompletedAt),
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// ListByCoach returns all completions addressed to the coach across every
// trainee, newest first with store-stable order for equal instants.
func (r *mongoCompletionRepository) ListByCoach(ctx context.Context, coachID string) ([]domain.CompletionEvent, error) {
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAtEpochMs", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []completionDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]domain.CompletionEvent, len(docs))
	for i, d := range docs {
		events[i] = domain.CompletionEvent{
			ID:          d.ID,
			CoachID:     d.CoachID,
			TraineeID:   d.TraineeID,
			PlanID:      d.PlanID,
			PlanName:    d.PlanName,
			CompletedAt: fromEpochMs(d.CompletedAtMs),
		}
	}
	return events, nil
}

// WatchByCoach delivers the coach's full completion feed on every new
// event.
func (r *mongoCompletionRepository) WatchByCoach(ctx context.Context, coachID string) (<-chan repository.Batch[domain.CompletionEvent], error) {
	return watchFullQuery(ctx, r.collection, func(ctx context.Context) ([]domain.CompletionEvent, error) {
		return r.ListByCoach(ctx, coachID)
	})
}

// EnsureCompletionIndexes creates necessary indexes. Call during startup.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: the coach's cross-trainee feed, newest first
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "completedAtEpochMs", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
