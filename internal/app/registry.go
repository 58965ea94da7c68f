package app

import (
	"database/sql"
	"os"

	"go-leavehub/internal/auth"
	"go-leavehub/internal/leave"
	"go-leavehub/internal/messaging/kafka"
	"go-leavehub/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB, db)
	leaveRepo := leave.NewRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// Cancel terhadap request pending: hapus record atau simpan sebagai
	// cancelled. Default simpan; revisi lama menghapus.
	cancelDeletesPending := os.Getenv("LEAVE_CANCEL_DELETE_PENDING") == "true"

	// --- Services ---
	authService := auth.NewService(userRepo, leaveRepo)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, userRepo, outboxRepo, rdb, cancelDeletesPending)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	leaveHandler := leave.NewHandler(leaveService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, userRepo)
		leave.RegisterRoutes(api, leaveHandler, userRepo, rdb)
	}

	return nil
}
