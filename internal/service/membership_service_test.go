package service

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMembershipRepo captures upserts and replays canned lists/streams.
type fakeMembershipRepo struct {
	upserted []domain.Membership

	coachIDs []string
	trainees []domain.TraineeRef
	listErr  error

	traineeBatches chan repository.Batch[domain.TraineeRef]
}

var _ repository.MembershipRepository = (*fakeMembershipRepo)(nil)

func (f *fakeMembershipRepo) Upsert(_ context.Context, m *domain.Membership) error {
	f.upserted = append(f.upserted, *m)
	return nil
}

func (f *fakeMembershipRepo) ListCoachIDs(_ context.Context, _ string) ([]string, error) {
	return f.coachIDs, f.listErr
}

func (f *fakeMembershipRepo) ListTrainees(_ context.Context, _ string) ([]domain.TraineeRef, error) {
	return append([]domain.TraineeRef(nil), f.trainees...), f.listErr
}

func (f *fakeMembershipRepo) WatchCoachIDs(_ context.Context, _ string) (<-chan repository.Batch[string], error) {
	ch := make(chan repository.Batch[string], 1)
	ch <- repository.Batch[string]{Items: f.coachIDs}
	close(ch)
	return ch, nil
}

func (f *fakeMembershipRepo) WatchTrainees(_ context.Context, _ string) (<-chan repository.Batch[domain.TraineeRef], error) {
	return f.traineeBatches, nil
}

func TestMembershipService_JoinValidationAndDelegate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeMembershipRepo{}
	s := NewMembershipService(repo)

	require.ErrorIs(t, s.Join(ctx, "", "Bob", "coach-1"), ErrInvalidArgument)
	require.ErrorIs(t, s.Join(ctx, "trainee-1", "Bob", ""), ErrInvalidArgument)
	assert.Empty(t, repo.upserted)

	require.NoError(t, s.Join(ctx, "trainee-1", "Bob", "coach-1"))
	require.Len(t, repo.upserted, 1)
	m := repo.upserted[0]
	assert.Equal(t, "trainee-1", m.TraineeID)
	assert.Equal(t, "coach-1", m.CoachID)
	assert.Equal(t, "Bob", m.TraineeName)
	assert.WithinDuration(t, time.Now().UTC(), m.JoinedAt, time.Minute)
}

func TestMembershipService_ListJoined(t *testing.T) {
	ctx := context.Background()
	repo := &fakeMembershipRepo{coachIDs: []string{"coach-1", "coach-2"}}
	s := NewMembershipService(repo)

	ids, err := s.ListJoined(ctx, "trainee-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"coach-1", "coach-2"}, ids)

	_, err = s.ListJoined(ctx, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMembershipService_ListTraineesSorted(t *testing.T) {
	ctx := context.Background()
	repo := &fakeMembershipRepo{trainees: []domain.TraineeRef{
		{TraineeID: "t3"}, // blank name: falls back to raw id
		{TraineeID: "t1", DisplayName: "bob"},
		{TraineeID: "t2", DisplayName: "Alice"},
	}}
	s := NewMembershipService(repo)

	refs, err := s.ListTrainees(ctx, "coach-1")
	require.NoError(t, err)
	require.Len(t, refs, 3)
	// Case-sensitive lexicographic: "Alice" < "bob" < "t3".
	assert.Equal(t, "t2", refs[0].TraineeID)
	assert.Equal(t, "t1", refs[1].TraineeID)
	assert.Equal(t, "t3", refs[2].TraineeID)
}

func TestMembershipService_ObserveTraineesSortsEachBatch(t *testing.T) {
	ctx := context.Background()
	batches := make(chan repository.Batch[domain.TraineeRef], 2)
	batches <- repository.Batch[domain.TraineeRef]{Items: []domain.TraineeRef{
		{TraineeID: "t1", DisplayName: "zed"},
		{TraineeID: "t2", DisplayName: "amy"},
	}}
	close(batches)

	repo := &fakeMembershipRepo{traineeBatches: batches}
	s := NewMembershipService(repo)

	out, err := s.ObserveTrainees(ctx, "coach-1")
	require.NoError(t, err)

	batch := <-out
	require.NoError(t, batch.Err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "amy", batch.Items[0].DisplayName)

	_, open := <-out
	assert.False(t, open, "stream should close after the source closes")
}

func TestMembershipService_ObserveTraineesForwardsFailure(t *testing.T) {
	ctx := context.Background()
	batches := make(chan repository.Batch[domain.TraineeRef], 1)
	batches <- repository.Batch[domain.TraineeRef]{Err: assert.AnError}

	repo := &fakeMembershipRepo{traineeBatches: batches}
	s := NewMembershipService(repo)

	out, err := s.ObserveTrainees(ctx, "coach-1")
	require.NoError(t, err)

	batch := <-out
	require.Error(t, batch.Err)

	_, open := <-out
	assert.False(t, open, "stream should end after a failure emission")
}
