package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"recipehub/internal/apperrors"
	"recipehub/internal/logger"
	"recipehub/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	requestTimeout  = 5 * time.Second
	defaultPageSize = 20
	maxPageSize     = 100
)

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError writes {"error": message} with the status matching the error kind.
// Unknown errors are logged with their cause and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c).Error("request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": apperrors.Message(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// currentUserID returns the authenticated user's id; routes using it sit behind AuthMiddleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return userID, true
}

// pagination reads ?page=&page_size= with sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
