package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mirrornet-backend-go/internal/config"
	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (request ID, logging, recovery, CORS) is
// applied to the router in main before this function is called.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	userService core.UserService,
	circleService core.CircleService,
	ratingService core.RatingService,
	attractionService core.AttractionService,
	goalService core.GoalService,
	inviteService core.InviteService,
	notificationService core.NotificationService,
	feedbackService core.FeedbackService,
	billingService core.BillingService,
) {
	// The Firebase Auth client must be available after db.InitFirestore().
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created, and routes will not be set up.")
		panic("Firebase Auth client is nil during route setup. Ensure db.InitFirestore() was called and succeeded.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService)
	circleHandler := NewCircleHandler(circleService)
	ratingHandler := NewRatingHandler(ratingService)
	attractionHandler := NewAttractionHandler(attractionService)
	goalHandler := NewGoalHandler(goalService)
	inviteHandler := NewInviteHandler(inviteService)
	notificationHandler := NewNotificationHandler(notificationService, userService)
	feedbackHandler := NewFeedbackHandler(feedbackService)
	billingHandler := NewBillingHandler(billingService)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and Authentication Endpoints ---
		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			// Called after client-side Firebase login/signup to ensure the
			// backend profile and default circles exist.
			usersGroup.POST("/initialize", authHandler.InitializeUserProfile)
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
			usersGroup.GET("/me/overview", notificationHandler.GetOverview)
			usersGroup.GET("/search", userHandler.SearchUsers)
		}

		// --- Circle Endpoints ---
		circlesGroup := apiV1.Group("/circles", authMW.VerifyToken())
		{
			circlesGroup.GET("", circleHandler.ListCircles)
			circlesGroup.POST("", circleHandler.CreateCircle)
			circlesGroup.GET("/:circleId", circleHandler.GetCircleDetail)
			circlesGroup.DELETE("/:circleId/members/:memberId", circleHandler.RemoveMember)

			// Ratings are scoped to a circle; membership is checked in the
			// RatingService.
			circlesGroup.POST("/:circleId/ratings", ratingHandler.SubmitRating)
			circlesGroup.GET("/:circleId/ratings/received", ratingHandler.ListReceivedRatings)
		}

		// --- Cross-circle Rating Views ---
		ratingsGroup := apiV1.Group("/ratings", authMW.VerifyToken())
		{
			ratingsGroup.GET("/breakdown/:trait", ratingHandler.GetTraitBreakdown)
		}

		// --- Premium Attraction Rating and Reveal Endpoints ---
		attractionGroup := apiV1.Group("/attraction-ratings", authMW.VerifyToken())
		{
			attractionGroup.POST("", attractionHandler.SubmitAttractionRating)
			attractionGroup.GET("/received", attractionHandler.ListReceivedAttractionRatings)
		}
		revealGroup := apiV1.Group("/reveal-requests", authMW.VerifyToken())
		{
			revealGroup.POST("", attractionHandler.RequestReveal)
			revealGroup.GET("/received", attractionHandler.ListReceivedReveals)
			revealGroup.POST("/:requestId/respond", attractionHandler.RespondToReveal)
		}

		// --- Family Goal Endpoints ---
		goalsGroup := apiV1.Group("/goals", authMW.VerifyToken())
		{
			goalsGroup.POST("", goalHandler.SuggestGoal)
			goalsGroup.GET("", goalHandler.ListGoals)
			goalsGroup.POST("/:goalId/respond", goalHandler.RespondToGoal)
			goalsGroup.POST("/:goalId/complete", goalHandler.CompleteGoal)
		}

		// --- Invite Endpoints ---
		invitesGroup := apiV1.Group("/invites", authMW.VerifyToken())
		{
			invitesGroup.POST("", inviteHandler.SendInvite)
			invitesGroup.GET("/received", inviteHandler.ListReceivedInvites)
			invitesGroup.POST("/:inviteId/respond", inviteHandler.RespondToInvite)
		}

		// --- Notification Endpoints ---
		notificationsGroup := apiV1.Group("/notifications", authMW.VerifyToken())
		{
			notificationsGroup.GET("/badges", notificationHandler.GetBadgeCounts)
		}

		// --- Feedback Endpoint ---
		apiV1.POST("/feedback", authMW.VerifyToken(), feedbackHandler.SubmitFeedback)

		// --- Billing Endpoints ---
		billingGroup := apiV1.Group("/billing")
		{
			billingGroup.POST("/create-checkout-session", authMW.VerifyToken(), billingHandler.CreateCheckoutSession)

			// Public webhook endpoint; the provider authenticates via the
			// payload signature, verified in the service.
			billingGroup.POST("/webhooks", billingHandler.HandleBillingWebhook)
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "MirrorNet backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
