package handler

import (
	"net/http"

	"recipehub/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth          *AuthHandler
	Recipes       *RecipeHandler
	Comments      *CommentHandler
	Categories    *CategoryHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	Admin         *AdminHandler
}

// RegisterRoutes mounts the API under /api/v1. auth guards the authenticated
// routes; limit throttles the credential endpoints.
func RegisterRoutes(r *gin.Engine, h Handlers, auth gin.HandlerFunc, limit gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Public auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limit, h.Auth.Register)
		authGroup.POST("/login", limit, h.Auth.Login)
		authGroup.POST("/refresh", limit, h.Auth.RefreshToken)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.POST("/verify-email", limit, h.Auth.VerifyEmail)
		authGroup.POST("/forgot-password", limit, h.Auth.ForgotPassword)
		authGroup.POST("/reset-password", limit, h.Auth.ResetPassword)
		authGroup.POST("/send-verification", auth, limit, h.Auth.SendVerificationCode)
	}

	// Public read routes
	api.GET("/recipes", h.Recipes.List)
	api.GET("/recipes/:id", h.Recipes.Get)
	api.GET("/categories", h.Categories.List)
	api.GET("/users/:username", h.Users.GetProfile)

	// Authenticated routes
	protected := api.Group("")
	protected.Use(auth)
	{
		protected.POST("/recipes", h.Recipes.Submit)
		protected.DELETE("/recipes/:id", h.Recipes.Delete)
		protected.POST("/recipes/:id/like", h.Recipes.ToggleLike)
		protected.POST("/recipes/:id/favourite", h.Recipes.ToggleFavourite)
		protected.POST("/recipes/:id/comments", h.Comments.Create)

		protected.PUT("/users/:username/rating", h.Users.RateUser)

		me := protected.Group("/me")
		me.GET("/liked", h.Recipes.ListLiked)
		me.GET("/favourites", h.Recipes.ListFavourites)
		me.PATCH("/profile", h.Users.EditProfile)

		h.Notifications.RegisterRoutes(protected.Group("/notifications"))
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/recipes/pending", h.Admin.PendingRecipes)
		admin.GET("/recipes/:id", h.Admin.GetRecipe)
		admin.POST("/recipes/:id/approve", h.Admin.ApproveRecipe)
		admin.POST("/recipes/:id/reject", h.Admin.RejectRecipe)

		admin.GET("/comments/pending", h.Admin.PendingComments)
		admin.POST("/comments/:id/approve", h.Admin.ApproveComment)
		admin.POST("/comments/:id/reject", h.Admin.RejectComment)

		admin.POST("/categories", h.Categories.Create)
		admin.DELETE("/categories/:id", h.Categories.Delete)

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id/role", h.Admin.SetRole)
	}
}
