package handler

import (
	"net/http"

	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	moderation service.ModerationService
}

func NewCommentHandler(moderation service.ModerationService) *CommentHandler {
	return &CommentHandler{
		moderation: moderation,
	}
}

// Create submits a comment, or a reply when reply_to is set, for moderation
// POST /api/v1/recipes/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.moderation.SubmitComment(ctx, userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmittedCommentResponse{
		ID:         comment.ID,
		RecipeID:   comment.RecipeID,
		Content:    comment.Content,
		ReplyTo:    comment.ReplyToID,
		IsApproved: comment.IsApproved,
		Date:       comment.CreatedAt,
	})
}
