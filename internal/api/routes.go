package api

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"alcyxob/coach-sync/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	directoryService service.DirectoryService,
	membershipService service.MembershipService,
	publisherService service.PublisherService,
	completionService service.CompletionService,
	planRepo repository.PlanRepository,
	logger *zap.Logger,
) {
	directoryHandler := NewDirectoryHandler(directoryService)
	membershipHandler := NewMembershipHandler(membershipService, directoryService)
	planHandler := NewPlanHandler(publisherService, directoryService, planRepo, logger)
	completionHandler := NewCompletionHandler(publisherService, completionService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Directory ---
		directoryGroup := protected.Group("/directory")
		{
			// PUT /api/v1/directory - a coach claims their display name
			directoryGroup.PUT("", RoleMiddleware(domain.RoleCoach), directoryHandler.UpsertEntry)
			// GET /api/v1/directory/resolve?name= - display name to coach id
			directoryGroup.GET("/resolve", directoryHandler.ResolveIDByName)
			// GET /api/v1/directory/coaches/{coachId} - coach id to display name
			directoryGroup.GET("/coaches/:coachId", directoryHandler.ResolveNameByID)
		}

		// --- Membership ---
		// POST /api/v1/memberships - trainee joins a coach (by id or name)
		protected.POST("/memberships", RoleMiddleware(domain.RoleTrainee), membershipHandler.Join)
		// GET /api/v1/memberships - trainee's joined coach ids
		protected.GET("/memberships", RoleMiddleware(domain.RoleTrainee), membershipHandler.ListJoined)
		// GET /api/v1/trainees - coach's joined trainees, sorted for display
		protected.GET("/trainees", RoleMiddleware(domain.RoleCoach), membershipHandler.ListTrainees)

		// --- Plan distribution ---
		planGroup := protected.Group("/plans")
		{
			// POST /api/v1/plans/broadcast - publish to all joined trainees
			planGroup.POST("/broadcast", RoleMiddleware(domain.RoleCoach), planHandler.PublishBroadcast)
			// POST /api/v1/plans/inbox/{traineeId} - publish to one trainee
			planGroup.POST("/inbox/:traineeId", RoleMiddleware(domain.RoleCoach), planHandler.PublishToTrainee)
			// GET /api/v1/plans/feed?coachId= - SSE merged broadcast+inbox view
			planGroup.GET("/feed", RoleMiddleware(domain.RoleTrainee), planHandler.Feed)
		}
		// DELETE /api/v1/inbox/{planId} - trainee marks an inbox plan as read
		protected.DELETE("/inbox/:planId", RoleMiddleware(domain.RoleTrainee), planHandler.DeleteFromInbox)

		// --- Completions ---
		completionGroup := protected.Group("/completions")
		{
			// POST /api/v1/completions - trainee reports a completed plan
			completionGroup.POST("", RoleMiddleware(domain.RoleTrainee), completionHandler.Report)
			// GET /api/v1/completions - coach's cross-trainee feed, one shot
			completionGroup.GET("", RoleMiddleware(domain.RoleCoach), completionHandler.List)
			// GET /api/v1/completions/feed - SSE live feed
			completionGroup.GET("/feed", RoleMiddleware(domain.RoleCoach), completionHandler.Feed)
		}
	}
}
