package users

import (
	"context"
	"log"
	"strings"
	"time"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	store    *repository.Store
	tokens   *utils.TokenManager
	sessions *utils.SessionStore
	cost     int
}

func NewService(store *repository.Store, tokens *utils.TokenManager, sessions *utils.SessionStore) *Service {
	return &Service{store: store, tokens: tokens, sessions: sessions, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.CollegeID = strings.TrimSpace(req.CollegeID)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:   strings.TrimSpace(req.FullName),
		Email:      req.Email,
		CollegeID:  req.CollegeID,
		Role:       req.AccountType,
		Department: req.Department,
	}

	if req.AccountType == models.RoleStudent {
		if req.AcademicYear == "" {
			return nil, apperror.Validation("academic year is required", "academicYear is required for students")
		}
		yearID, err := utils.ParseObjectID("academicYear", req.AcademicYear)
		if err != nil {
			return nil, err
		}
		if _, err := s.store.AcademicYears.FindByID(ctx, yearID); err != nil {
			if repository.IsNotFound(err) {
				return nil, apperror.Validation("academic year does not exist", "academicYear does not exist")
			}
			return nil, utils.StoreError(err, "academic year not found")
		}
		user.AcademicYear = &yearID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperror.Dependency("failed to hash password", err)
	}
	user.Password = string(hash)
	user.CreatedAt = utils.Now()
	user.UpdatedAt = user.CreatedAt

	if err := s.store.Users.Insert(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperror.Conflict("a user with this email or collegeId already exists")
		}
		return nil, utils.StoreError(err, "user not found")
	}
	log.Printf("[user] registered id=%s role=%s", user.ID.Hex(), user.Role)
	return user, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	allowed, err := s.sessions.LoginAllowed(ctx, req.Email)
	if err != nil {
		log.Printf("⚠️ [user] rate limit check failed: %v", err)
		allowed = true
	}
	if !allowed {
		return nil, apperror.RateLimited("too many login attempts, please try again later")
	}

	user, err := s.store.Users.FindByEmail(ctx, req.Email)
	if err != nil && !repository.IsNotFound(err) {
		return nil, utils.StoreError(err, "user not found")
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		if err := s.sessions.RecordLoginFailure(ctx, req.Email); err != nil {
			log.Printf("⚠️ [user] failed to record login attempt: %v", err)
		}
		return nil, apperror.Unauthorized("invalid email or password")
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.ResetLoginFailures(ctx, req.Email); err != nil {
		log.Printf("⚠️ [user] failed to reset login attempts: %v", err)
	}
	log.Printf("[user] login id=%s", user.ID.Hex())
	return &models.LoginResponse{User: user, AuthTokens: *tokens}, nil
}

// Refresh rotates the token pair. The presented refresh token must be the one
// stored on the user, so a rotated-out token cannot be replayed.
func (s *Service) Refresh(ctx context.Context, req models.RefreshRequest) (*models.AuthTokens, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	claims, err := s.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired refresh token")
	}
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired refresh token")
	}
	user, err := s.store.Users.FindByID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.Unauthorized("invalid or expired refresh token")
		}
		return nil, utils.StoreError(err, "user not found")
	}
	if user.RefreshToken == "" || user.RefreshToken != req.RefreshToken {
		return nil, apperror.Unauthorized("refresh token has been revoked")
	}
	return s.issue(ctx, user)
}

// Logout clears the stored refresh token and blacklists the access token for
// the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, identity models.Identity, tokenID string, expiresIn time.Duration) error {
	if err := s.store.Users.SetRefreshToken(ctx, identity.UserID, ""); err != nil {
		return utils.StoreError(err, "user not found")
	}
	if err := s.sessions.BlacklistToken(ctx, tokenID, expiresIn); err != nil {
		return apperror.Dependency("failed to revoke access token", err)
	}
	log.Printf("[user] logout id=%s", identity.UserID.Hex())
	return nil
}

func (s *Service) Current(ctx context.Context, identity models.Identity) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, utils.StoreError(err, "user not found")
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	identity := user.Identity()
	access, err := s.tokens.GenerateAccessToken(identity)
	if err != nil {
		return nil, apperror.Dependency("token generation failed", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(identity)
	if err != nil {
		return nil, apperror.Dependency("token generation failed", err)
	}
	if err := s.store.Users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, utils.StoreError(err, "user not found")
	}
	user.RefreshToken = refresh
	return &models.AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL.Seconds()),
	}, nil
}
