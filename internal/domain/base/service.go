// internal/domain/base/service.go
package base

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
	"gorm.io/gorm"
)

// Service handles base registry business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new base service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateBaseRequest represents base creation data
type CreateBaseRequest struct {
	Name            string    `json:"name" binding:"required"`
	Code            string    `json:"code" binding:"required"`
	Location        Location  `json:"location"`
	CommanderID     *uint     `json:"commander_id"`
	EstablishedDate time.Time `json:"established_date"`
	Description     string    `json:"description"`
}

// Create creates a new base
func (s *Service) Create(req *CreateBaseRequest) (*Base, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) == 0 || len(code) > 10 {
		return nil, fmt.Errorf("%w: base code must be 1-10 characters", apperrors.ErrValidation)
	}

	var existing Base
	if err := s.db.Where("code = ? OR name = ?", code, req.Name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: base with this name or code already exists", apperrors.ErrValidation)
	}

	b := &Base{
		Name:            req.Name,
		Code:            code,
		Location:        req.Location,
		CommanderID:     req.CommanderID,
		EstablishedDate: req.EstablishedDate,
		Status:          BaseStatusActive,
		Description:     req.Description,
	}

	if err := s.db.Create(b).Error; err != nil {
		return nil, fmt.Errorf("failed to create base: %w", err)
	}

	return b, nil
}

// Get retrieves a single base by ID, honoring the caller's scope
func (s *Service) Get(id uint, sc scope.Scope) (*Base, error) {
	if !sc.Allows(id) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, id)
	}

	var b Base
	if err := s.db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: base %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to retrieve base: %w", err)
	}
	return &b, nil
}

// List retrieves bases visible to the caller. Restricted callers see only
// their assigned base.
func (s *Service) List(sc scope.Scope) ([]Base, error) {
	var bases []Base
	query := sc.Apply(s.db.Model(&Base{}), "bases.id")
	if err := query.Order("name asc").Find(&bases).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bases: %w", err)
	}
	return bases, nil
}

// Exists reports whether a base with the given ID exists
func (s *Service) Exists(id uint) (bool, error) {
	var count int64
	if err := s.db.Model(&Base{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check base: %w", err)
	}
	return count > 0, nil
}
