package api

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// feedPlanRepo hands the feed engine pre-scripted stream channels.
type feedPlanRepo struct {
	broadcastCh chan repository.Batch[domain.Plan]
	inboxCh     chan repository.Batch[domain.Plan]
}

var _ repository.PlanRepository = (*feedPlanRepo)(nil)

func newFeedPlanRepo() *feedPlanRepo {
	return &feedPlanRepo{
		broadcastCh: make(chan repository.Batch[domain.Plan], 4),
		inboxCh:     make(chan repository.Batch[domain.Plan], 4),
	}
}

func (f *feedPlanRepo) UpsertBroadcast(context.Context, *domain.Plan) error     { return nil }
func (f *feedPlanRepo) UpsertInbox(context.Context, string, *domain.Plan) error { return nil }
func (f *feedPlanRepo) DeleteInbox(context.Context, string, string) error       { return nil }
func (f *feedPlanRepo) ListBroadcast(context.Context, string) ([]domain.Plan, error) {
	return nil, nil
}
func (f *feedPlanRepo) ListInbox(context.Context, string) ([]domain.Plan, error) { return nil, nil }
func (f *feedPlanRepo) WatchBroadcast(context.Context, string) (<-chan repository.Batch[domain.Plan], error) {
	return f.broadcastCh, nil
}
func (f *feedPlanRepo) WatchInbox(context.Context, string) (<-chan repository.Batch[domain.Plan], error) {
	return f.inboxCh, nil
}

// closeNotifyRecorder adds the CloseNotifier surface gin's Stream needs on
// top of the plain test recorder.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func newFeedRouter(repo repository.PlanRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPlanHandler(nil, nil, repo, zap.NewNop())
	router.GET("/feed", func(c *gin.Context) {
		c.Set(ContextUserIDKey, "trainee-1")
		c.Set(ContextUserRoleKey, domain.RoleTrainee)
	}, handler.Feed)
	return router
}

func TestPlanFeed_EndsWhenBothStreamsDie(t *testing.T) {
	repo := newFeedPlanRepo()
	router := newFeedRouter(repo)

	// Both streams fail; the engine drains them and Run returns nil.
	repo.broadcastCh <- repository.Batch[domain.Plan]{Err: assert.AnError}
	close(repo.broadcastCh)
	repo.inboxCh <- repository.Batch[domain.Plan]{Err: assert.AnError}
	close(repo.inboxCh)

	req := httptest.NewRequest(http.MethodGet, "/feed?coachId=coach-1", nil)
	rec := &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(rec, req)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed should end once both streams have died, not hang")
	}
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlanFeed_RequiresCoachIDQuery(t *testing.T) {
	router := newFeedRouter(newFeedPlanRepo())

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
