// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user and authentication business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=50"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Rank           string `json:"rank" binding:"required"`
	Role           Role   `json:"role"`
	AssignedBaseID *uint  `json:"assigned_base_id"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Seconds
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = RoleLogisticsOfficer
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role '%s'", apperrors.ErrValidation, role)
	}
	// Non-admin users must belong to a base
	if role != RoleAdmin && req.AssignedBaseID == nil {
		return nil, fmt.Errorf("%w: assigned base is required for role '%s'", apperrors.ErrValidation, role)
	}

	var existing User
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: username or email already registered", apperrors.ErrValidation)
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	u := &User{
		Username:       req.Username,
		Email:          req.Email,
		Password:       hashed,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Rank:           req.Rank,
		Role:           role,
		AssignedBaseID: req.AssignedBaseID,
		IsActive:       true,
	}

	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponse(u)
}

// Login authenticates a user and issues tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var u User
	if err := s.db.Where("username = ?", req.Username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	now := time.Now().UTC()
	s.db.Model(&u).Update("last_login_at", now)
	u.LastLoginAt = &now

	return s.buildAuthResponse(&u)
}

// RefreshToken issues a new token pair from a valid refresh token. Role and
// base scope are re-read from the database, not trusted from the old token.
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	var u User
	if err := s.db.First(&u, claims.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	if !u.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	return s.buildAuthResponse(&u)
}

// GetProfile retrieves a user's profile
func (s *Service) GetProfile(userID uint) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

func (s *Service) buildAuthResponse(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Username, string(u.Role), u.AssignedBaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
