package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mirrornet-backend-go/internal/api"
	"mirrornet-backend-go/internal/coaching"
	"mirrornet-backend-go/internal/config"
	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/middleware"
	"mirrornet-backend-go/pkg/cache"
	"mirrornet-backend-go/pkg/mailer"
	"mirrornet-backend-go/pkg/messagequeue"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	// A .env file is a development convenience; production sets environment
	// variables directly.
	if err := godotenv.Load(); err != nil {
		zapLogger.Info("No .env file loaded; relying on process environment.")
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (includes Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	if firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase Auth client is nil after initialization. Application cannot start.")
	}

	// --- 4. Initialize Optional Side Channels (cache, queue, mailer, tips) ---
	// All four are optional: a missing setting disables the feature and the
	// services degrade to their no-op paths.
	var eventCache cache.Cache
	if appConfig.RedisAddr != "" {
		eventCache, err = cache.NewRedisCache(cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Warn("Redis cache unavailable; webhook replay guard disabled", zap.Error(err))
			eventCache = nil
		} else {
			zapLogger.Info("Redis cache connected", zap.String("addr", appConfig.RedisAddr))
		}
	}

	var activityQueue messagequeue.MessageQueue
	if appConfig.AMQPURL != "" {
		activityQueue, err = messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.AMQPURL})
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable; activity events disabled", zap.Error(err))
			activityQueue = nil
		} else {
			zapLogger.Info("RabbitMQ connected")
			defer activityQueue.Close()
		}
	}

	var inviteMailer mailer.Mailer
	if appConfig.SMTPHost != "" {
		smtpPort, convErr := strconv.Atoi(appConfig.SMTPPort)
		if convErr != nil {
			zapLogger.Warn("Invalid SMTP_PORT; invite emails disabled", zap.String("port", appConfig.SMTPPort))
		} else {
			inviteMailer, err = mailer.NewSMTPMailer(mailer.Config{
				Host:     appConfig.SMTPHost,
				Port:     smtpPort,
				Username: appConfig.SMTPUsername,
				Password: appConfig.SMTPPassword,
				Sender:   appConfig.SMTPSender,
			})
			if err != nil {
				zapLogger.Warn("SMTP mailer misconfigured; invite emails disabled", zap.Error(err))
				inviteMailer = nil
			} else {
				zapLogger.Info("SMTP mailer configured", zap.String("host", appConfig.SMTPHost))
			}
		}
	}

	var tipGenerator core.TipGenerator
	if appConfig.GenAIAPIKey != "" {
		coachingClient, err := coaching.NewClient(appConfig.GenAIAPIKey, appConfig.GenAIModel)
		if err != nil {
			zapLogger.Warn("Coaching tip client unavailable; goals will be created without tips", zap.Error(err))
		} else {
			tipGenerator = coachingClient
			defer coachingClient.Close()
			zapLogger.Info("Coaching tip client initialized", zap.String("model", appConfig.GenAIModel))
		}
	}

	// --- 5. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	circleRepo := db.NewFirestoreCircleRepository(firestoreClient)
	ratingRepo := db.NewFirestoreRatingRepository(firestoreClient)
	attractionRepo := db.NewFirestoreAttractionRatingRepository(firestoreClient)
	revealRepo := db.NewFirestoreRevealRequestRepository(firestoreClient)
	goalRepo := db.NewFirestoreFamilyGoalRepository(firestoreClient)
	inviteRepo := db.NewFirestoreInviteRepository(firestoreClient)
	feedbackRepo := db.NewFirestoreFeedbackRepository(firestoreClient)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 6. Initialize Services ---
	auditService := core.NewAuditService(auditRepo)
	userService := core.NewUserService(userRepo, inviteRepo, auditService, appConfig.RevealTokenAllowance)
	circleService := core.NewCircleService(circleRepo, userRepo, ratingRepo, auditService)
	ratingService := core.NewRatingService(ratingRepo, circleRepo, userRepo, auditService)
	attractionService := core.NewAttractionService(attractionRepo, revealRepo, userRepo, auditService, activityQueue, appConfig.RevealTokenAllowance)
	goalService := core.NewGoalService(goalRepo, circleRepo, userRepo, auditService, tipGenerator, activityQueue)
	inviteService := core.NewInviteService(inviteRepo, circleRepo, userRepo, auditService, inviteMailer, activityQueue, appConfig.ClientURL)
	notificationService := core.NewNotificationService(inviteRepo, revealRepo, goalRepo)
	feedbackService := core.NewFeedbackService(feedbackRepo)
	billingService := core.NewBillingService(userRepo, auditService, eventCache, appConfig.BillingWebhookSecret)
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 8. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured. API might not be accessible from a web frontend.")
	}

	// --- 9. Setup API Routes ---
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		userService,
		circleService,
		ratingService,
		attractionService,
		goalService,
		inviteService,
		notificationService,
		feedbackService,
		billingService,
	)

	// --- 10. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
