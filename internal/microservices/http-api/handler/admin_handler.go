package handler

import (
	"context"
	"net/http"

	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the moderation queue and account management.
type AdminHandler struct {
	moderation service.ModerationService
	queries    service.RecipeQueryService
	users      service.UserService
}

func NewAdminHandler(moderation service.ModerationService, queries service.RecipeQueryService, users service.UserService) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		queries:    queries,
		users:      users,
	}
}

// PendingRecipes lists unapproved recipes, oldest first
// GET /api/v1/admin/recipes/pending
func (h *AdminHandler) PendingRecipes(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	recipes, err := h.queries.GetAllUnapprovedRecipesData(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe shows any recipe, approved or not
// GET /api/v1/admin/recipes/:id
func (h *AdminHandler) GetRecipe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.queries.GetRecipeData(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) ApproveRecipe(c *gin.Context) {
	h.moderate(c, h.moderation.ApproveRecipe, "Recipe approved")
}

func (h *AdminHandler) RejectRecipe(c *gin.Context) {
	h.moderate(c, h.moderation.RejectRecipe, "Recipe rejected")
}

// PendingComments lists comments waiting for moderation
// GET /api/v1/admin/comments/pending
func (h *AdminHandler) PendingComments(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.moderation.ListUnapprovedComments(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *AdminHandler) ApproveComment(c *gin.Context) {
	h.moderate(c, h.moderation.ApproveComment, "Comment approved")
}

func (h *AdminHandler) RejectComment(c *gin.Context) {
	h.moderate(c, h.moderation.RejectComment, "Comment rejected")
}

func (h *AdminHandler) moderate(c *gin.Context, action func(ctx context.Context, id string) error, done string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := action(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: done})
}

// ListUsers
// GET /api/v1/admin/users?page=&page_size=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := pagination(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.ListUsers(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetRole
// PUT /api/v1/admin/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.SetRole(ctx, c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Role updated"})
}
