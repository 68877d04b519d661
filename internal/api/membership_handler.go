// internal/api/membership_handler.go
package api

import (
	"alcyxob/coach-sync/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	membershipService service.MembershipService
	directoryService  service.DirectoryService
}

func NewMembershipHandler(
	membershipService service.MembershipService,
	directoryService service.DirectoryService,
) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		directoryService:  directoryService,
	}
}

// --- DTOs ---

// JoinRequest identifies the coach either directly by id or by directory
// display name (the usual mobile flow: the trainee types the coach's name).
type JoinRequest struct {
	CoachID     string `json:"coachId"`
	CoachName   string `json:"coachName"`
	TraineeName string `json:"traineeName"`
}

// Join subscribes the authenticated trainee to a coach. Joining twice is
// idempotent.
func (h *MembershipHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	traineeID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainee from token.")
		return
	}

	coachID := req.CoachID
	if coachID == "" {
		coachID, err = h.directoryService.ResolveIDByName(c.Request.Context(), req.CoachName)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if coachID == "" {
			abortWithError(c, http.StatusNotFound, "No coach found for that name.")
			return
		}
	}

	if err := h.membershipService.Join(c.Request.Context(), traineeID, req.TraineeName, coachID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coachId": coachID})
}

// ListJoined returns the coach ids the authenticated trainee has joined.
func (h *MembershipHandler) ListJoined(c *gin.Context) {
	traineeID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainee from token.")
		return
	}

	coachIDs, err := h.membershipService.ListJoined(c.Request.Context(), traineeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if coachIDs == nil {
		coachIDs = []string{} // empty JSON array, not null
	}
	c.JSON(http.StatusOK, gin.H{"coachIds": coachIDs})
}

// ListTrainees returns the authenticated coach's joined trainees, sorted
// by display name with raw-id fallback.
func (h *MembershipHandler) ListTrainees(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	trainees, err := h.membershipService.ListTrainees(c.Request.Context(), coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainees": trainees})
}
