package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/constants"
	"github.com/teamspace/collab-api/internal/database"
	"github.com/teamspace/collab-api/internal/events"
	"github.com/teamspace/collab-api/internal/models"
	"github.com/teamspace/collab-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db          *gorm.DB
	bus         *events.Bus
	authService *AuthService
	wsService   *WorkspaceService
	chService   *ChannelService
	msgService  *MessageService
	presService *PresenceService
	actService  *ActivityService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:          db,
		bus:         bus,
		authService: NewAuthService(userRepo),
		wsService:   NewWorkspaceService(wsRepo, bus),
		chService:   NewChannelService(chRepo, wsRepo, bus),
		msgService:  NewMessageService(msgRepo, chRepo, wsRepo, bus),
		presService: NewPresenceService(presRepo, wsRepo),
		actService:  NewActivityService(actRepo),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestWorkspace(t *testing.T, env serviceTestEnv, owner *models.User, name string) *models.Workspace {
	t.Helper()

	ws, err := env.wsService.CreateWorkspace(CreateWorkspaceInput{
		Name:    name,
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	return ws
}

func createTestChannel(t *testing.T, env serviceTestEnv, ws *models.Workspace, creator *models.User, name string) *models.Channel {
	t.Helper()

	ch, err := env.chService.CreateChannel(ws.ID, creator.ID, CreateChannelInput{
		Name: name,
	})
	require.NoError(t, err)
	return ch
}
