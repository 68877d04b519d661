// internal/api/completion_handler.go
package api

import (
	"alcyxob/coach-sync/internal/service"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CompletionHandler struct {
	publisherService  service.PublisherService
	completionService service.CompletionService
}

func NewCompletionHandler(
	publisherService service.PublisherService,
	completionService service.CompletionService,
) *CompletionHandler {
	return &CompletionHandler{
		publisherService:  publisherService,
		completionService: completionService,
	}
}

// --- DTOs ---

type ReportCompletionRequest struct {
	CoachID  string `json:"coachId" binding:"required"`
	PlanID   string `json:"planId" binding:"required"`
	PlanName string `json:"planName"`
}

// Report appends one completion event from the authenticated trainee.
// Events are immutable; reporting the same plan again creates a new event.
func (h *CompletionHandler) Report(c *gin.Context) {
	var req ReportCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	traineeID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainee from token.")
		return
	}

	if err := h.publisherService.ReportCompletion(c.Request.Context(), req.CoachID, traineeID, req.PlanID, req.PlanName); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// List returns the authenticated coach's cross-trainee completion feed,
// newest first.
func (h *CompletionHandler) List(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	events, err := h.completionService.ListAllForCoach(c.Request.Context(), coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completions": MapCompletionsToResponse(events)})
}

// Feed streams the coach's completion feed as server-sent events: the full
// recency-sorted list on every new report. A subscription failure is sent
// as one error event, then the stream ends; the client must reconnect.
func (h *CompletionHandler) Feed(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	ctx := c.Request.Context()
	batches, err := h.completionService.ObserveAllForCoach(ctx, coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case batch, ok := <-batches:
			if !ok {
				return false
			}
			if batch.Err != nil {
				c.SSEvent("error", gin.H{"error": "completion subscription failed"})
				return false
			}
			c.SSEvent("completions", MapCompletionsToResponse(batch.Items))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
