// internal/domain/asset/service.go
package asset

import (
	"errors"
	"fmt"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles asset catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new asset service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateAssetRequest represents asset creation data
type CreateAssetRequest struct {
	Name          string        `json:"name" binding:"required"`
	Type          AssetType     `json:"type" binding:"required"`
	Category      string        `json:"category" binding:"required"`
	Model         string        `json:"model"`
	SerialNumber  string        `json:"serial_number"`
	Manufacturer  string        `json:"manufacturer"`
	UnitOfMeasure UnitOfMeasure `json:"unit_of_measure"`
	CostPerUnit   int64         `json:"cost_per_unit" binding:"required"`
	MinimumStock  int           `json:"minimum_stock"`
	Description   string        `json:"description"`
}

// ListRequest represents asset list query parameters
type ListRequest struct {
	Page     int       `form:"page,default=1"`
	Limit    int       `form:"limit,default=20"`
	Type     AssetType `form:"type"`
	Category string    `form:"category"`
	Search   string    `form:"search"`
}

// Create creates a new catalog asset
func (s *Service) Create(req *CreateAssetRequest) (*Asset, error) {
	if !ValidType(req.Type) {
		return nil, fmt.Errorf("%w: unknown asset type '%s'", apperrors.ErrValidation, req.Type)
	}
	unit := req.UnitOfMeasure
	if unit == "" {
		unit = UnitPiece
	}
	if !ValidUnit(unit) {
		return nil, fmt.Errorf("%w: unknown unit of measure '%s'", apperrors.ErrValidation, unit)
	}
	if req.CostPerUnit < 0 {
		return nil, fmt.Errorf("%w: cost per unit cannot be negative", apperrors.ErrValidation)
	}
	if req.MinimumStock < 0 {
		return nil, fmt.Errorf("%w: minimum stock cannot be negative", apperrors.ErrValidation)
	}

	if req.SerialNumber != "" {
		var existing Asset
		if err := s.db.Where("serial_number = ?", req.SerialNumber).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("%w: asset with serial number '%s' already exists", apperrors.ErrValidation, req.SerialNumber)
		}
	}

	a := &Asset{
		Name:          req.Name,
		Type:          req.Type,
		Category:      req.Category,
		Model:         req.Model,
		SerialNumber:  req.SerialNumber,
		Manufacturer:  req.Manufacturer,
		UnitOfMeasure: unit,
		CostPerUnit:   req.CostPerUnit,
		MinimumStock:  req.MinimumStock,
		Description:   req.Description,
		IsActive:      true,
	}

	if err := s.db.Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return a, nil
}

// Get retrieves a single asset by ID
func (s *Service) Get(id uint) (*Asset, error) {
	var a Asset
	if err := s.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: asset %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to retrieve asset: %w", err)
	}
	return &a, nil
}

// List retrieves active assets with optional filtering
func (s *Service) List(req *ListRequest) ([]Asset, int64, error) {
	var assets []Asset
	var total int64

	query := s.db.Model(&Asset{}).Where("is_active = ?", true)
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		query = query.Where("name LIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name asc").Offset(offset).Limit(req.Limit).Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve assets: %w", err)
	}

	return assets, total, nil
}

// IDsByType returns the IDs of all assets of the given type. Used by the
// dashboard to translate an asset-type filter into a ledger filter.
func (s *Service) IDsByType(t AssetType) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&Asset{}).Where("type = ?", t).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to look up assets by type: %w", err)
	}
	return ids, nil
}
