package service

import (
	"errors"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameInUse           = apperrors.Conflict("username already in use")
	ErrEmailInUse          = apperrors.Conflict("email already in use")
	ErrInvalidCredentials  = apperrors.Unauthorized("invalid credentials")
	ErrInvalidToken        = apperrors.Unauthorized("invalid token")
	ErrInvalidRefreshToken = apperrors.Unauthorized("invalid refresh token")
	ErrExpiredRefreshToken = apperrors.Unauthorized("refresh token expired")
	ErrInvalidCode         = apperrors.Validation("invalid or expired code")
	ErrAlreadyVerified     = apperrors.Conflict("email already verified")
	ErrAlreadyApproved     = apperrors.Conflict("approved entries cannot be rejected")
	ErrSelfRating          = apperrors.Validation("you cannot rate yourself")
	ErrInvalidRating       = apperrors.Validation("rating must be between 1 and 5")
	ErrInvalidRole         = apperrors.Validation("role must be user or admin")
	ErrNotRecipeOwner      = apperrors.Forbidden("only the author or an admin can delete this recipe")
	ErrWrongPassword       = apperrors.Unauthorized("current password is incorrect")
)

// lookupErr turns a missing row into a NotFound error for entity and
// anything else into the generic error.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return apperrors.Wrap(err)
}

// conflictErr maps unique violations to a Conflict carrying message.
func conflictErr(err error, message string) error {
	if repository.IsUniqueViolation(err) {
		return apperrors.Conflict(message)
	}
	return apperrors.Wrap(err)
}

// validID reports whether id has the shape of a stored identifier. Malformed
// ids can never match a row, so callers answer NotFound without a query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
