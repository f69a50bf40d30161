package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/teamspace/collab-api/internal/config"
	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/database"
	"github.com/teamspace/collab-api/internal/events"
	"github.com/teamspace/collab-api/internal/handlers"
	"github.com/teamspace/collab-api/internal/middleware"
	"github.com/teamspace/collab-api/internal/repository"
	"github.com/teamspace/collab-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	wsRepo := repository.NewWorkspaceRepository(db)
	chRepo := repository.NewChannelRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	presRepo := repository.NewPresenceRepository(db)
	actRepo := repository.NewActivityRepository(db)

	// Event bus feeding the activity log
	bus := events.NewBus(constants.EventBusBuffer)
	defer bus.Close()

	actService := services.NewActivityService(actRepo)
	bus.Subscribe(actService.HandleEvent)

	// Services
	authService := services.NewAuthService(userRepo)
	wsService := services.NewWorkspaceService(wsRepo, bus)
	chService := services.NewChannelService(chRepo, wsRepo, bus)
	msgService := services.NewMessageService(msgRepo, chRepo, wsRepo, bus)
	presService := services.NewPresenceService(presRepo, wsRepo)

	// Periodic cleanup of stale presence and expired typing rows
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := presService.CleanupExpiredTyping(); err != nil {
				log.Printf("typing cleanup failed: %v", err)
			}
			if _, err := presService.CleanupStalePresence(constants.PresenceCleanupMaxAge); err != nil {
				log.Printf("presence cleanup failed: %v", err)
			}
		}
	}()

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	wsHandler := handlers.NewWorkspaceHandler(wsService)
	chHandler := handlers.NewChannelHandler(chService)
	msgHandler := handlers.NewMessageHandler(msgService)
	presHandler := handlers.NewPresenceHandler(presService)
	actHandler := handlers.NewActivityHandler(actService)
	feedHandler := handlers.NewEventFeedHandler(bus)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Collaboration API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", wsHandler.CreateWorkspace)
			workspaces.GET("", wsHandler.ListWorkspaces)
			workspaces.POST("/:id/restore", wsHandler.RestoreWorkspace)

			scoped := workspaces.Group("/:id", middleware.RequireWorkspaceAccess())
			{
				scoped.GET("", wsHandler.GetWorkspace)
				scoped.PATCH("", middleware.RequireWorkspaceManager(), wsHandler.UpdateWorkspace)
				scoped.DELETE("", middleware.RequireWorkspaceOwner(), wsHandler.DeleteWorkspace)

				scoped.GET("/members", wsHandler.ListMembers)
				scoped.POST("/members", middleware.RequireWorkspaceManager(), wsHandler.AddMember)
				scoped.PATCH("/members/:userId", middleware.RequireWorkspaceManager(), wsHandler.UpdateMemberRole)
				scoped.DELETE("/members/:userId", middleware.RequireWorkspaceManager(), wsHandler.RemoveMember)

				scoped.POST("/channels", chHandler.CreateChannel)
				scoped.GET("/channels", chHandler.ListChannels)

				scoped.PUT("/presence", presHandler.UpdatePresence)
				scoped.POST("/presence/heartbeat", presHandler.Heartbeat)
				scoped.GET("/presence/online", presHandler.ListOnlineUsers)
				scoped.GET("/presence/stats", presHandler.GetPresenceStats)
				scoped.GET("/presence/:userId", presHandler.GetUserStatus)

				scoped.GET("/activities", actHandler.ListWorkspaceActivities)

				scoped.GET("/events", feedHandler.HandleEvents)
			}
		}

		// Channel routes (protected)
		channels := api.Group("/channels")
		channels.Use(middleware.RequireAuth())
		channels.Use(middleware.RequireChannelAccess())
		{
			channels.GET("/:id", chHandler.GetChannel)
			channels.PATCH("/:id", chHandler.UpdateChannel)
			channels.DELETE("/:id", chHandler.DeleteChannel)
			channels.POST("/:id/archive", chHandler.ArchiveChannel)
			channels.POST("/:id/unarchive", chHandler.UnarchiveChannel)

			channels.GET("/:id/members", chHandler.ListChannelMembers)
			channels.POST("/:id/members", chHandler.AddChannelMember)
			channels.DELETE("/:id/members/:userId", chHandler.RemoveChannelMember)

			channels.POST("/:id/messages", msgHandler.SendMessage)
			channels.GET("/:id/messages", msgHandler.ListMessages)
			channels.GET("/:id/pins", msgHandler.ListPinnedMessages)

			channels.PUT("/:id/presence", presHandler.UpdateChannelPresence)
			channels.GET("/:id/presence/online", presHandler.ListChannelOnlineUsers)
			channels.POST("/:id/typing", presHandler.StartTyping)
			channels.GET("/:id/typing", presHandler.ListTypingUsers)
		}

		// Message routes (protected); visibility is enforced in the service
		messages := api.Group("/messages")
		messages.Use(middleware.RequireAuth())
		{
			messages.GET("/:id", msgHandler.GetMessage)
			messages.PATCH("/:id", msgHandler.UpdateMessage)
			messages.DELETE("/:id", msgHandler.DeleteMessage)
			messages.GET("/:id/thread", msgHandler.GetThread)
			messages.POST("/:id/reactions", msgHandler.AddReaction)
			messages.DELETE("/:id/reactions/:emoji", msgHandler.RemoveReaction)
			messages.POST("/:id/pin", msgHandler.PinMessage)
			messages.DELETE("/:id/pin", msgHandler.UnpinMessage)
		}

		// Activity routes (protected)
		activities := api.Group("/activities")
		activities.Use(middleware.RequireAuth())
		{
			activities.GET("/me", actHandler.ListMyActivities)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
