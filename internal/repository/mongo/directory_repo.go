// internal/repository/mongo/directory_repo.go
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

const (
	directoryNamesCollectionName = "directory_names"
	directoryIDsCollectionName   = "directory_ids"
)

// directoryDoc is the wire shape of both directory halves. The forward
// document lives in directory_names keyed by the normalized name, the
// reverse document in directory_ids keyed by the coach id.
type directoryDoc struct {
	ID               string `bson:"_id"`
	CoachID          string `bson:"coachId"`
	DisplayName      string `bson:"displayName"`
	DisplayNameLower string `bson:"displayNameLower"`
	UpdatedAtEpochMs int64  `bson:"updatedAtEpochMs"`
}

// mongoDirectoryRepository implements repository.DirectoryRepository
type mongoDirectoryRepository struct {
	names *mongo.Collection
	ids   *mongo.Collection
}

// NewMongoDirectoryRepository creates a new directory repository.
func NewMongoDirectoryRepository(db *mongo.Database) repository.DirectoryRepository {
	return &mongoDirectoryRepository{
		names: db.Collection(directoryNamesCollectionName),
		ids:   db.Collection(directoryIDsCollectionName),
	}
}

func directorySetFields(entry *domain.DirectoryEntry) bson.M {
	return bson.M{
		"coachId":          entry.CoachID,
		"displayName":      entry.DisplayName,
		"displayNameLower": entry.NameKey,
		"updatedAtEpochMs": toEpochMs(entry.UpdatedAt),
	}
}

// UpsertForward writes the name-keyed half of the directory.
func (r *mongoDirectoryRepository) UpsertForward(ctx context.Context, entry *domain.DirectoryEntry) error {
	if entry.NameKey == "" || entry.CoachID == "" {
		return errors.New("directory entry requires nameKey and coachId")
	}
	filter := bson.M{"_id": entry.NameKey}
	update := bson.M{"$set": directorySetFields(entry)}
	_, err := r.names.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// UpsertReverse writes the id-keyed half of the directory.
func (r *mongoDirectoryRepository) UpsertReverse(ctx context.Context, entry *domain.DirectoryEntry) error {
	if entry.NameKey == "" || entry.CoachID == "" {
		return errors.New("directory entry requires nameKey and coachId")
	}
	filter := bson.M{"_id": entry.CoachID}
	update := bson.M{"$set": directorySetFields(entry)}
	_, err := r.ids.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// FindByNameKey looks up the forward entry. Returns ErrNotFound when no
// coach has claimed the name.
func (r *mongoDirectoryRepository) FindByNameKey(ctx context.Context, nameKey string) (*domain.DirectoryEntry, error) {
	return r.findOne(ctx, r.names, nameKey)
}

// FindByCoachID looks up the reverse entry.
func (r *mongoDirectoryRepository) FindByCoachID(ctx context.Context, coachID string) (*domain.DirectoryEntry, error) {
	return r.findOne(ctx, r.ids, coachID)
}

func (r *mongoDirectoryRepository) findOne(ctx context.Context, coll *mongo.Collection, key string) (*domain.DirectoryEntry, error) {
	var doc directoryDoc
	err := coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &domain.DirectoryEntry{
		CoachID:     doc.CoachID,
		DisplayName: doc.DisplayName,
		NameKey:     doc.DisplayNameLower,
		UpdatedAt:   fromEpochMs(doc.UpdatedAtEpochMs),
	}, nil
}
