package leave

import (
	"go-leavehub/internal/domain"
	"go-leavehub/internal/middleware"
	"go-leavehub/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	users user.Repository,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(users))
	{
		leaves.POST("", middleware.Idempotency(rdb), handler.Create)
		leaves.GET("/my-leaves", handler.GetMyLeaves)
		leaves.GET("/stats", handler.Stats)
		leaves.GET("", middleware.RoleMiddleware(domain.RoleManager, domain.RoleAdmin), handler.GetAll)
		leaves.GET("/:id", handler.GetById)
		leaves.PUT("/:id/approve", middleware.RoleMiddleware(domain.RoleManager, domain.RoleAdmin), handler.Approve)
		leaves.PUT("/:id/reject", middleware.RoleMiddleware(domain.RoleManager, domain.RoleAdmin), handler.Reject)
		leaves.PUT("/:id/cancel", handler.Cancel)
	}
}
