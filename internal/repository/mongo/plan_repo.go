// internal/repository/mongo/plan_repo.go
package mongo

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	broadcastCollectionName = "broadcast_plans"
	inboxCollectionName     = "inbox_plans"
)

// planDoc is the wire shape of a distributed plan. Instants are stored as
// epoch milliseconds. TraineeID is set only on inbox documents.
type planDoc struct {
	ID               string        `bson:"_id"`
	CoachID          string        `bson:"coachId"`
	TraineeID        string        `bson:"traineeId,omitempty"`
	Name             string        `bson:"name"`
	CreatedAtEpochMs int64         `bson:"createdAtEpochMs"`
	PublishedAtMs    int64         `bson:"publishedAtEpochMs"`
	UpdatedAtEpochMs int64         `bson:"updatedAtEpochMs"`
	Exercises        []exerciseDoc `bson:"exercises"`
}

type exerciseDoc struct {
	Name   string   `bson:"name"`
	Sets   *int     `bson:"sets,omitempty"`
	Reps   *int     `bson:"reps,omitempty"`
	Weight *float64 `bson:"weight,omitempty"`
}

// inboxDoc uses a synthetic _id so the same plan id can sit in many
// trainee inboxes; the logical key is the (traineeId, planId) pair.
type inboxDoc struct {
	ID               string        `bson:"_id"`
	PlanID           string        `bson:"planId"`
	CoachID          string        `bson:"coachId"`
	TraineeID        string        `bson:"traineeId"`
	Name             string        `bson:"name"`
	CreatedAtEpochMs int64         `bson:"createdAtEpochMs"`
	PublishedAtMs    int64         `bson:"publishedAtEpochMs"`
	UpdatedAtEpochMs int64         `bson:"updatedAtEpochMs"`
	Exercises        []exerciseDoc `bson:"exercises"`
}

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	broadcast *mongo.Collection
	inbox     *mongo.Collection
}

// NewMongoPlanRepository creates a new plan repository over the broadcast
// and inbox collections.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		broadcast: db.Collection(broadcastCollectionName),
		inbox:     db.Collection(inboxCollectionName),
	}
}

func toEpochMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromEpochMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toExerciseDocs(exs []domain.Exercise) []exerciseDoc {
	docs := make([]exerciseDoc, len(exs))
	for i, ex := range exs {
		docs[i] = exerciseDoc{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Weight: ex.Weight}
	}
	return docs
}

func fromExerciseDocs(docs []exerciseDoc) []domain.Exercise {
	exs := make([]domain.Exercise, len(docs))
	for i, d := range docs {
		exs[i] = domain.Exercise{Name: d.Name, Sets: d.Sets, Reps: d.Reps, Weight: d.Weight}
	}
	return exs
}

// planSetFields builds the $set payload for a merge-write. Only fields
// present in the plan are written, so a partial republish never erases
// stored fields that the payload omits. The exercises list is one field:
// when present it replaces the stored list wholesale.
func planSetFields(plan *domain.Plan) bson.M {
	set := bson.M{"coachId": plan.CoachID}
	if plan.Name != "" {
		set["name"] = plan.Name
	}
	if plan.Exercises != nil {
		set["exercises"] = toExerciseDocs(plan.Exercises)
	}
	if !plan.CreatedAt.IsZero() {
		set["createdAtEpochMs"] = toEpochMs(plan.CreatedAt)
	}
	if !plan.PublishedAt.IsZero() {
		set["publishedAtEpochMs"] = toEpochMs(plan.PublishedAt)
	}
	if !plan.UpdatedAt.IsZero() {
		set["updatedAtEpochMs"] = toEpochMs(plan.UpdatedAt)
	}
	return set
}

// UpsertBroadcast merge-writes the plan into the coach's broadcast channel
// at key = plan id.
func (r *mongoPlanRepository) UpsertBroadcast(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" || plan.CoachID == "" {
		return errors.New("broadcast plan requires id and coachId")
	}
	filter := bson.M{"_id": plan.ID}
	update := bson.M{"$set": planSetFields(plan)}
	_, err := r.broadcast.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// UpsertInbox merge-writes the plan into one trainee's private inbox.
func (r *mongoPlanRepository) UpsertInbox(ctx context.Context, traineeID string, plan *domain.Plan) error {
	if plan.ID == "" || plan.CoachID == "" || traineeID == "" {
		return errors.New("inbox plan requires id, coachId, and traineeId")
	}
	set := planSetFields(plan)
	set["planId"] = plan.ID
	set["traineeId"] = traineeID
	filter := bson.M{"traineeId": traineeID, "planId": plan.ID}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": traineeID + "/" + plan.ID},
	}
	_, err := r.inbox.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// DeleteInbox removes the targeted copy of a plan from a trainee's inbox.
// The broadcast copy, if any, is untouched. Deleting an absent document is
// not an error.
func (r *mongoPlanRepository) DeleteInbox(ctx context.Context, traineeID, planID string) error {
	if traineeID == "" || planID == "" {
		return errors.New("trainee ID and plan ID are required for inbox deletion")
	}
	_, err := r.inbox.DeleteOne(ctx, bson.M{"traineeId": traineeID, "planId": planID})
	return err
}

// ListBroadcast returns the coach's current broadcast channel, oldest
// publication first so merge order is stable across reads.
func (r *mongoPlanRepository) ListBroadcast(ctx context.Context, coachID string) ([]domain.Plan, error) {
	return r.listPlans(ctx, r.broadcast, bson.M{"coachId": coachID})
}

// ListInbox returns the trainee's current inbox contents.
func (r *mongoPlanRepository) ListInbox(ctx context.Context, traineeID string) ([]domain.Plan, error) {
	return r.listPlans(ctx, r.inbox, bson.M{"traineeId": traineeID})
}

func (r *mongoPlanRepository) listPlans(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]domain.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "publishedAtEpochMs", Value: 1}})
	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []inboxDoc // superset of planDoc fields, works for both collections
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, len(docs))
	for i, d := range docs {
		id := d.PlanID
		if id == "" {
			id = d.ID
		}
		plans[i] = domain.Plan{
			ID:          id,
			CoachID:     d.CoachID,
			Name:        d.Name,
			Exercises:   fromExerciseDocs(d.Exercises),
			CreatedAt:   fromEpochMs(d.CreatedAtEpochMs),
			PublishedAt: fromEpochMs(d.PublishedAtMs),
			UpdatedAt:   fromEpochMs(d.UpdatedAtEpochMs),
		}
	}
	return plans, nil
}

// WatchBroadcast delivers the coach's full broadcast channel on every
// underlying change.
func (r *mongoPlanRepository) WatchBroadcast(ctx context.Context, coachID string) (<-chan repository.Batch[domain.Plan], error) {
	return watchFullQuery(ctx, r.broadcast, func(ctx context.Context) ([]domain.Plan, error) {
		return r.ListBroadcast(ctx, coachID)
	})
}

// WatchInbox delivers the trainee's full inbox on every underlying change.
func (r *mongoPlanRepository) WatchInbox(ctx context.Context, traineeID string) (<-chan repository.Batch[domain.Plan], error) {
	return watchFullQuery(ctx, r.inbox, func(ctx context.Context) ([]domain.Plan, error) {
		return r.ListInbox(ctx, traineeID)
	})
}

// EnsurePlanIndexes creates the indexes for both plan collections. Call
// during startup.
func EnsurePlanIndexes(ctx context.Context, db *mongo.Database) {
	broadcastIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(broadcastCollectionName).Indexes().CreateMany(ctx, broadcastIndexes)

	inboxIndexes := []mongo.IndexModel{
		{
			// Logical identity of an inbox item
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = db.Collection(inboxCollectionName).Indexes().CreateMany(ctx, inboxIndexes)
}
