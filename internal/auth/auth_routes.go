package auth

import (
	"go-leavehub/internal/domain"
	"go-leavehub/internal/middleware"
	"go-leavehub/internal/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, users user.Repository) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitByIP(0.1, 3), handler.Register)
		auth.POST("/login", middleware.RateLimitByIP(0.08, 5), handler.Login)
		auth.POST("/refresh-token", handler.RefreshToken)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", middleware.AuthMiddleware(users), middleware.RateLimitByUser(2, 5), handler.Me)
		auth.GET("/members",
			middleware.AuthMiddleware(users),
			middleware.RoleMiddleware(domain.RoleManager, domain.RoleAdmin),
			handler.Members,
		)
		auth.POST("/reset-password",
			middleware.AuthMiddleware(users),
			middleware.RoleMiddleware(domain.RoleAdmin),
			middleware.RateLimitByUser(0.5, 3),
			handler.ResetPassword,
		)
	}
}
