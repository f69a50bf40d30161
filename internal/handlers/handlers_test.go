package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/database"
	"github.com/teamspace/collab-api/internal/events"
	"github.com/teamspace/collab-api/internal/middleware"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/repository"
	"github.com/teamspace/collab-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// handlerTestEnv wires the full route table against an in-memory database,
// mirroring the server assembly in cmd/server.
type handlerTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
	wsService   *services.WorkspaceService
	chService   *services.ChannelService
	msgService  *services.MessageService
	actService  *services.ActivityService
	bus         *events.Bus
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Channel{},
		&models.ChannelMember{},
		&models.Message{},
		&models.MessageReaction{},
		&models.UserPresence{},
		&models.TypingIndicator{},
		&models.Activity{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	wsRepo := repository.NewWorkspaceRepository(db)
	chRepo := repository.NewChannelRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	presRepo := repository.NewPresenceRepository(db)
	actRepo := repository.NewActivityRepository(db)

	bus := events.NewBus(constants.EventBusBuffer)
	t.Cleanup(bus.Close)

	actService := services.NewActivityService(actRepo)
	bus.Subscribe(actService.HandleEvent)

	authService := services.NewAuthService(userRepo)
	wsService := services.NewWorkspaceService(wsRepo, bus)
	chService := services.NewChannelService(chRepo, wsRepo, bus)
	msgService := services.NewMessageService(msgRepo, chRepo, wsRepo, bus)
	presService := services.NewPresenceService(presRepo, wsRepo)

	authHandler := NewAuthHandler(authService)
	wsHandler := NewWorkspaceHandler(wsService)
	chHandler := NewChannelHandler(chService)
	msgHandler := NewMessageHandler(msgService)
	presHandler := NewPresenceHandler(presService)
	actHandler := NewActivityHandler(actService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", wsHandler.CreateWorkspace)
			workspaces.GET("", wsHandler.ListWorkspaces)
			workspaces.POST("/:id/restore", wsHandler.RestoreWorkspace)

			scoped := workspaces.Group("/:id", middleware.RequireWorkspaceAccess())
			{
				scoped.GET("", wsHandler.GetWorkspace)
				scoped.DELETE("", middleware.RequireWorkspaceOwner(), wsHandler.DeleteWorkspace)
				scoped.POST("/members", middleware.RequireWorkspaceManager(), wsHandler.AddMember)
				scoped.DELETE("/members/:userId", middleware.RequireWorkspaceManager(), wsHandler.RemoveMember)
				scoped.POST("/channels", chHandler.CreateChannel)
				scoped.GET("/channels", chHandler.ListChannels)
				scoped.PUT("/presence", presHandler.UpdatePresence)
				scoped.GET("/activities", actHandler.ListWorkspaceActivities)
			}
		}

		channels := api.Group("/channels")
		channels.Use(middleware.RequireAuth())
		channels.Use(middleware.RequireChannelAccess())
		{
			channels.GET("/:id", chHandler.GetChannel)
			channels.POST("/:id/messages", msgHandler.SendMessage)
			channels.GET("/:id/messages", msgHandler.ListMessages)
			channels.POST("/:id/typing", presHandler.StartTyping)
			channels.GET("/:id/typing", presHandler.ListTypingUsers)
		}

		messages := api.Group("/messages")
		messages.Use(middleware.RequireAuth())
		{
			messages.GET("/:id/thread", msgHandler.GetThread)
			messages.POST("/:id/reactions", msgHandler.AddReaction)
		}
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return handlerTestEnv{
		db:          db,
		router:      r,
		authService: authService,
		wsService:   wsService,
		chService:   chService,
		msgService:  msgService,
		actService:  actService,
		bus:         bus,
	}
}

// signupAndLogin registers a user and returns the session cookies to attach
// to subsequent requests.
func signupAndLogin(t *testing.T, env handlerTestEnv, username string) (*models.User, []*http.Cookie) {
	t.Helper()

	user, err := env.authService.Signup(services.SignupInput{
		Username: username,
		Password: "supersecret",
	})
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": "supersecret",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	return user, w.Result().Cookies()
}

func doJSON(t *testing.T, env handlerTestEnv, method, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
