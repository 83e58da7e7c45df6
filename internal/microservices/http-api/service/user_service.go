package service

import (
	"context"
	"strings"
	"time"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"
	"recipehub/internal/middleware/auth"
)

type UserService interface {
	GetProfile(ctx context.Context, username string) (*dto.ProfileResponse, error)
	EditProfile(ctx context.Context, userID string, edit dto.ProfileEdit) (*models.User, error)
	// RateUser records the rater's score of the user named target, replacing an earlier one.
	RateUser(ctx context.Context, raterID, target string, value int) (*dto.RatingSummaryResponse, error)
	ListUsers(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	SetRole(ctx context.Context, userID, role string) error
}

type userService struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	tokens  repository.RefreshTokenRepository
	now     func() time.Time
}

func NewUserService(users repository.UserRepository, recipes repository.RecipeRepository, tokens repository.RefreshTokenRepository) UserService {
	return &userService{
		users:   users,
		recipes: recipes,
		tokens:  tokens,
		now:     time.Now,
	}
}

func (s *userService) GetProfile(ctx context.Context, username string) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	avg, count, err := s.users.RatingSummary(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	recipes, err := s.recipes.CountApprovedByAuthor(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	return &dto.ProfileResponse{
		ID:            user.ID,
		Username:      user.Username,
		Bio:           user.Bio,
		Image:         user.Image,
		Role:          user.Role,
		AverageRating: avg,
		RatingsCount:  count,
		RecipesCount:  recipes,
		CreatedAt:     user.CreatedAt,
	}, nil
}

func (s *userService) EditProfile(ctx context.Context, userID string, edit dto.ProfileEdit) (*models.User, error) {
	if !validID(userID) {
		return nil, apperrors.NotFound("user")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}

	passwordChanged := false
	switch e := edit.(type) {
	case dto.UsernameEdit:
		if e.Username == user.Username {
			return user, nil
		}
		if _, err := s.users.FindByUsername(ctx, e.Username); err == nil {
			return nil, ErrNameInUse
		}
		user.Username = e.Username
	case dto.EmailEdit:
		if e.Email == user.Email {
			return user, nil
		}
		if _, err := s.users.FindByEmail(ctx, e.Email); err == nil {
			return nil, ErrEmailInUse
		}
		user.Email = e.Email
		user.IsVerified = false
	case dto.BioEdit:
		user.Bio = e.Bio
	case dto.ImageEdit:
		user.Image = e.Image
	case dto.PasswordEdit:
		if err := auth.VerifyPassword(user.Password, e.Current); err != nil {
			return nil, ErrWrongPassword
		}
		hashed, err := auth.HashPassword(e.New)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		user.Password = hashed
		passwordChanged = true
	default:
		return nil, apperrors.Validation("unsupported profile field")
	}

	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, conflictErr(err, "username or email already in use")
	}
	// Sessions opened with the old password end here.
	if passwordChanged {
		if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
			return nil, apperrors.Wrap(err)
		}
	}
	return user, nil
}

func (s *userService) RateUser(ctx context.Context, raterID, target string, value int) (*dto.RatingSummaryResponse, error) {
	if value < 1 || value > 5 {
		return nil, ErrInvalidRating
	}
	if !validID(raterID) {
		return nil, apperrors.NotFound("user")
	}
	if _, err := s.users.FindByID(ctx, raterID); err != nil {
		return nil, lookupErr(err, "user")
	}
	rated, err := s.users.FindByUsername(ctx, strings.TrimSpace(target))
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if rated.ID == raterID {
		return nil, ErrSelfRating
	}

	now := s.now()
	rating := &models.UserRating{
		UserID:    rated.ID,
		RaterID:   raterID,
		Rating:    value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.UpsertRating(ctx, rating); err != nil {
		return nil, apperrors.Wrap(err)
	}

	avg, count, err := s.users.RatingSummary(ctx, rated.ID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &dto.RatingSummaryResponse{
		Username:      rated.Username,
		AverageRating: avg,
		RatingsCount:  count,
	}, nil
}

func (s *userService) ListUsers(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.users.List(ctx, page, pageSize)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	data := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginated(data, int(total), page, pageSize), nil
}

func (s *userService) SetRole(ctx context.Context, userID, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return ErrInvalidRole
	}
	if !validID(userID) {
		return apperrors.NotFound("user")
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return lookupErr(err, "user")
	}
	return nil
}
