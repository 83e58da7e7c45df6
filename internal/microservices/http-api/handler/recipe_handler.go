package handler

import (
	"net/http"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/middleware"
	"recipehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	queries    service.RecipeQueryService
	recipes    service.RecipeService
	moderation service.ModerationService
}

func NewRecipeHandler(queries service.RecipeQueryService, recipes service.RecipeService, moderation service.ModerationService) *RecipeHandler {
	return &RecipeHandler{
		queries:    queries,
		recipes:    recipes,
		moderation: moderation,
	}
}

// List returns approved recipes
// GET /api/v1/recipes?category=&search=&recipes_of=
func (h *RecipeHandler) List(c *gin.Context) {
	var q dto.RecipeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	h.list(c, q)
}

// ListLiked returns the approved recipes the caller liked
// GET /api/v1/me/liked
func (h *RecipeHandler) ListLiked(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.list(c, dto.RecipeQuery{LikedBy: userID})
}

// ListFavourites returns the approved recipes the caller favourited
// GET /api/v1/me/favourites
func (h *RecipeHandler) ListFavourites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.list(c, dto.RecipeQuery{FavouritedBy: userID})
}

func (h *RecipeHandler) list(c *gin.Context, q dto.RecipeQuery) {
	ctx, cancel := requestContext(c)
	defer cancel()

	recipes, err := h.queries.GetAllApprovedRecipesData(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// Get returns one approved recipe with its approved comments
// GET /api/v1/recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.queries.GetRecipeData(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !view.IsApproved {
		respondError(c, apperrors.NotFound("recipe"))
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit creates a recipe awaiting moderation
// POST /api/v1/recipes
func (h *RecipeHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	recipe, err := h.moderation.SubmitRecipe(ctx, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// ToggleLike
// POST /api/v1/recipes/:id/like
func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.recipes.ToggleLike(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleFavourite
// POST /api/v1/recipes/:id/favourite
func (h *RecipeHandler) ToggleFavourite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.recipes.ToggleFavourite(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes a recipe; only its author or an admin may do so
// DELETE /api/v1/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.recipes.DeleteRecipe(ctx, userID, c.Param("id"), middleware.IsAdmin(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
