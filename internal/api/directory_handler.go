// internal/api/directory_handler.go
package api

import (
	"alcyxob/coach-sync/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directoryService service.DirectoryService
}

func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// --- DTOs ---

type UpsertDirectoryRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

// UpsertEntry lets the authenticated coach claim or update their display
// name in the directory.
func (h *DirectoryHandler) UpsertEntry(c *gin.Context) {
	var req UpsertDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	if err := h.directoryService.UpsertEntry(c.Request.Context(), coachID, req.DisplayName); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResolveIDByName resolves ?name= to a coach id. An unclaimed name yields
// 404; a blank name is a bad request at this surface.
func (h *DirectoryHandler) ResolveIDByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'name' is required.")
		return
	}

	coachID, err := h.directoryService.ResolveIDByName(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if coachID == "" {
		abortWithError(c, http.StatusNotFound, "No coach found for that name.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"coachId": coachID})
}

// ResolveNameByID resolves a coach id to its display name.
func (h *DirectoryHandler) ResolveNameByID(c *gin.Context) {
	coachID := c.Param("coachId")

	name, err := h.directoryService.ResolveNameByID(c.Request.Context(), coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if name == "" {
		abortWithError(c, http.StatusNotFound, "Coach has no directory entry.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"coachId": coachID, "displayName": name})
}
