// internal/repository/mongo/membership_repo.go
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

const membershipCollectionName = "memberships"

// membershipDoc is the wire shape of a membership. The trainee's display
// name is denormalized here at join time.
type membershipDoc struct {
	TraineeID       string `bson:"traineeId"`
	TraineeName     string `bson:"traineeName,omitempty"`
	CoachID         string `bson:"coachId"`
	JoinedAtEpochMs int64  `bson:"joinedAtEpochMs"`
}

// mongoMembershipRepository implements repository.MembershipRepository
type mongoMembershipRepository struct {
	collection *mongo.Collection
}

// NewMongoMembershipRepository creates a new membership repository.
func NewMongoMembershipRepository(db *mongo.Database) repository.MembershipRepository {
	return &mongoMembershipRepository{
		collection: db.Collection(membershipCollectionName),
	}
}

// Upsert records a trainee joining a coach. Membership is a set: the
// unique (traineeId, coachId) index makes re-joins overwrite joinedAt
// instead of inserting a duplicate pair.
func (r *mongoMembershipRepository) Upsert(ctx context.Context, m *domain.Membership) error {
	if m.TraineeID == "" || m.CoachID == "" {
		return errors.New("membership requires traineeId and coachId")
	}
	filter := bson.M{"traineeId": m.TraineeID, "coachId": m.CoachID}
	set := bson.M{
		"traineeId":       m.TraineeID,
		"coachId":         m.CoachID,
		"joinedAtEpochMs": toEpochMs(m.JoinedAt),
	}
	if m.TraineeName != "" {
		set["traineeName"] = m.TraineeName
	}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

// ListCoachIDs returns the ids of every coach the trainee has joined.
func (r *mongoMembershipRepository) ListCoachIDs(ctx context.Context, traineeID string) ([]string, error) {
	docs, err := r.list(ctx, bson.M{"traineeId": traineeID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.CoachID
	}
	return ids, nil
}

// ListTrainees returns every trainee who has joined the coach. Ordering is
// left to the service layer.
func (r *mongoMembershipRepository) ListTrainees(ctx context.Context, coachID string) ([]domain.TraineeRef, error) {
	docs, err := r.list(ctx, bson.M{"coachId": coachID})
	if err != nil {
		return nil, err
	}
	refs := make([]domain.TraineeRef, len(docs))
	for i, d := range docs {
		refs[i] = domain.TraineeRef{TraineeID: d.TraineeID, DisplayName: d.TraineeName}
	}
	return refs, nil
}

func (r *mongoMembershipRepository) list(ctx context.Context, filter bson.M) ([]membershipDoc, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "joinedAtEpochMs", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []membershipDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// WatchCoachIDs delivers the trainee's full joined-coach set on every
// membership change.
func (r *mongoMembershipRepository) WatchCoachIDs(ctx context.Context, traineeID string) (<-chan repository.Batch[string], error) {
	return watchFullQuery(ctx, r.collection, func(ctx context.Context) ([]string, error) {
		return r.ListCoachIDs(ctx, traineeID)
	})
}

// WatchTrainees delivers the coach's full trainee list on every change.
func (r *mongoMembershipRepository) WatchTrainees(ctx context.Context, coachID string) (<-chan repository.Batch[domain.TraineeRef], error) {
	return watchFullQuery(ctx, r.collection, func(ctx context.Context) ([]domain.TraineeRef, error) {
		return r.ListTrainees(ctx, coachID)
	})
}

// EnsureMembershipIndexes creates necessary indexes. Call during startup.
func EnsureMembershipIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Membership identity; makes Upsert idempotent under races
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "coachId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
