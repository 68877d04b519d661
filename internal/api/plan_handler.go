// internal/api/plan_handler.go
package api

import (
	"alcyxob/coach-sync/internal/repository"
	"alcyxob/coach-sync/internal/service"
	planSync "alcyxob/coach-sync/internal/sync"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlanHandler struct {
	publisherService service.PublisherService
	directoryService service.DirectoryService
	planRepo         repository.PlanRepository
	logger           *zap.Logger
}

func NewPlanHandler(
	publisherService service.PublisherService,
	directoryService service.DirectoryService,
	planRepo repository.PlanRepository,
	logger *zap.Logger,
) *PlanHandler {
	return &PlanHandler{
		publisherService: publisherService,
		directoryService: directoryService,
		planRepo:         planRepo,
		logger:           logger,
	}
}

// PublishBroadcast writes the plan to the authenticated coach's broadcast
// channel, visible to every joined trainee.
func (h *PlanHandler) PublishBroadcast(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	plan := MapRequestToPlan(&req)
	if err := h.publisherService.PublishBroadcast(c.Request.Context(), coachID, plan); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// PublishToTrainee writes the plan to one trainee's private inbox.
func (h *PlanHandler) PublishToTrainee(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}
	traineeID := c.Param("traineeId")

	plan := MapRequestToPlan(&req)
	if err := h.publisherService.PublishToTrainee(c.Request.Context(), coachID, traineeID, plan); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// DeleteFromInbox is the trainee's "mark as read": it removes the targeted
// copy of the plan from their inbox without touching any broadcast copy.
func (h *PlanHandler) DeleteFromInbox(c *gin.Context) {
	traineeID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainee from token.")
		return
	}
	planID := c.Param("planId")

	if err := h.publisherService.DeleteFromInbox(c.Request.Context(), traineeID, planID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Feed streams the merged plan view for one coach as seen by the
// authenticated trainee: broadcast channel plus private inbox, folded into
// one de-duplicated list. Server-sent events; one event per change, the
// current snapshot first. The stream ends when the client disconnects.
func (h *PlanHandler) Feed(c *gin.Context) {
	traineeID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainee from token.")
		return
	}
	coachID := c.Query("coachId")
	if coachID == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'coachId' is required.")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	engine, err := planSync.NewEngine(h.planRepo, h.directoryService, h.logger, coachID, traineeID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			h.logger.Warn("plan feed engine stopped",
				zap.String("coachId", coachID),
				zap.String("traineeId", traineeID),
				zap.Error(err))
		}
		// Run returning for any reason (error or both streams dead) means
		// no further updates will arrive; end the stream so the client
		// knows to reconnect.
		cancel()
	}()

	snapshots, unsubscribe := engine.Cache().Subscribe()
	defer unsubscribe()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("plans", MapItemsToResponse(snap))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
