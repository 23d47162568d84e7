// internal/domain/assignment/service.go
package assignment

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
	"gorm.io/gorm"
)

// Service handles assignment lifecycle business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	inventory *inventory.Service
}

// NewService creates a new assignment service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		inventory: inventory.NewService(db, cfg),
	}
}

// CreateAssignmentRequest represents data for issuing equipment
type CreateAssignmentRequest struct {
	AssetID            uint               `json:"asset_id" binding:"required"`
	BaseID             uint               `json:"base_id" binding:"required"`
	Quantity           int                `json:"quantity" binding:"required"`
	AssignedTo         Personnel          `json:"assigned_to" binding:"required"`
	Purpose            string             `json:"purpose" binding:"required"`
	ConditionAtIssue   EquipmentCondition `json:"condition_at_issue"`
	ExpectedReturnDate *time.Time         `json:"expected_return_date"`
	Notes              string             `json:"notes"`
}

// ReturnAssignmentRequest carries return details
type ReturnAssignmentRequest struct {
	ConditionAtReturn EquipmentCondition `json:"condition_at_return"`
	Notes             string             `json:"notes"`
}

// ListAssignmentsRequest represents assignment list query parameters
type ListAssignmentsRequest struct {
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=20"`
	Status      string `form:"status"`
	BaseID      uint   `form:"base_id"`
	AssetID     uint   `form:"asset_id"`
	PersonnelID string `form:"personnel_id"`
}

// Create issues equipment to a service member and debits the base's ledger
// in the same transaction. Insufficient stock fails the whole operation.
func (s *Service) Create(req *CreateAssignmentRequest, userID uint, sc scope.Scope) (*Assignment, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.AssignedTo.PersonnelID == "" || req.AssignedTo.Name == "" {
		return nil, fmt.Errorf("%w: personnel id and name are required", apperrors.ErrValidation)
	}
	if !sc.Allows(req.BaseID) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
	}

	if req.ConditionAtIssue == "" {
		req.ConditionAtIssue = ConditionGood
	}
	if !ValidCondition(req.ConditionAtIssue) {
		return nil, fmt.Errorf("%w: invalid condition '%s'", apperrors.ErrValidation, req.ConditionAtIssue)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	a := &Assignment{
		AssetID:            req.AssetID,
		BaseID:             req.BaseID,
		Quantity:           req.Quantity,
		Status:             AssignmentStatusAssigned,
		AssignedTo:         req.AssignedTo,
		Purpose:            req.Purpose,
		ConditionAtIssue:   req.ConditionAtIssue,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Notes:              req.Notes,
		AssignedBy:         userID,
	}
	if err := tx.Create(a).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	a.AssignmentNumber = a.GenerateAssignmentNumber()
	if err := tx.Model(a).Update("assignment_number", a.AssignmentNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to assign assignment number: %w", err)
	}

	rec, err := s.inventory.GetOrCreate(tx, a.AssetID, a.BaseID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	ref := inventory.MovementRef{
		ReferenceType: "assignment",
		ReferenceID:   a.ID,
		Notes:         fmt.Sprintf("Issue under %s", a.AssignmentNumber),
		CreatedBy:     userID,
	}
	if err := s.inventory.ApplyMovement(tx, rec, inventory.MovementAssigned, a.Quantity, ref); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}
	s.inventory.NotifyMovement(rec.ID, inventory.MovementAssigned)
	return a, nil
}

// Get retrieves an assignment by ID, honoring the caller's scope
func (s *Service) Get(id uint, sc scope.Scope) (*Assignment, error) {
	var a Assignment
	if err := s.db.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assignment %d not found", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to retrieve assignment: %w", err)
	}
	if !sc.Allows(a.BaseID) {
		return nil, fmt.Errorf("%w: assignment %d belongs to a base outside your assigned scope", apperrors.ErrAccessDenied, id)
	}
	return &a, nil
}

// List retrieves assignments visible to the caller with filtering and pagination
func (s *Service) List(req *ListAssignmentsRequest, sc scope.Scope) ([]Assignment, int64, error) {
	var assignments []Assignment
	var total int64

	query := sc.Apply(s.db.Model(&Assignment{}), "assignments.base_id")
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.BaseID > 0 {
		if !sc.Allows(req.BaseID) {
			return nil, 0, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
		}
		query = query.Where("base_id = ?", req.BaseID)
	}
	if req.AssetID > 0 {
		query = query.Where("asset_id = ?", req.AssetID)
	}
	if req.PersonnelID != "" {
		query = query.Where("assigned_to_personnel_id = ?", req.PersonnelID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&assignments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve assignments: %w", err)
	}

	return assignments, total, nil
}

// Return closes an active assignment and credits the quantity back to the
// base's ledger atomically with the status change.
func (s *Service) Return(id uint, req *ReturnAssignmentRequest, userID uint, sc scope.Scope) (*Assignment, error) {
	a, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if a.Status != AssignmentStatusAssigned {
		return nil, fmt.Errorf("%w: cannot return an assignment in status %s", apperrors.ErrInvalidStateTransition, a.Status)
	}

	condition := ConditionGood
	if req != nil && req.ConditionAtReturn != "" {
		if !ValidCondition(req.ConditionAtReturn) {
			return nil, fmt.Errorf("%w: invalid condition '%s'", apperrors.ErrValidation, req.ConditionAtReturn)
		}
		condition = req.ConditionAtReturn
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	updates := map[string]interface{}{
		"condition_at_return": condition,
		"returned_at":         now,
		"closed_at":           now,
	}
	if req != nil && req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if err := s.transition(tx, a, AssignmentStatusReturned, updates); err != nil {
		tx.Rollback()
		return nil, err
	}
	a.ConditionAtReturn = condition
	a.ReturnedAt = &now
	a.ClosedAt = &now
	if req != nil && req.Notes != "" {
		a.Notes = req.Notes
	}

	rec, err := s.inventory.GetOrCreate(tx, a.AssetID, a.BaseID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	ref := inventory.MovementRef{
		ReferenceType: "assignment",
		ReferenceID:   a.ID,
		Notes:         fmt.Sprintf("Return under %s", a.AssignmentNumber),
		CreatedBy:     userID,
	}
	if err := s.inventory.ReleaseAssignment(tx, rec, a.Quantity, ref); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit return: %w", err)
	}
	return a, nil
}

// MarkLost closes an active assignment as lost. The ledger is not touched:
// the units stay booked against total_assigned as issued and unrecovered.
func (s *Service) MarkLost(id uint, sc scope.Scope) (*Assignment, error) {
	return s.close(id, AssignmentStatusLost, ConditionLost, sc)
}

// MarkDamaged closes an active assignment as damaged. Status only.
func (s *Service) MarkDamaged(id uint, sc scope.Scope) (*Assignment, error) {
	return s.close(id, AssignmentStatusDamaged, ConditionDamaged, sc)
}

// MarkExpended closes an active assignment as expended in use. Status only.
func (s *Service) MarkExpended(id uint, sc scope.Scope) (*Assignment, error) {
	return s.close(id, AssignmentStatusExpended, "", sc)
}

func (s *Service) close(id uint, status AssignmentStatus, condition EquipmentCondition, sc scope.Scope) (*Assignment, error) {
	a, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if a.Status != AssignmentStatusAssigned {
		return nil, fmt.Errorf("%w: cannot move assignment from %s to %s", apperrors.ErrInvalidStateTransition, a.Status, status)
	}

	now := time.Now()
	updates := map[string]interface{}{"closed_at": now}
	if condition != "" {
		updates["condition_at_return"] = condition
	}
	if err := s.transition(s.db, a, status, updates); err != nil {
		return nil, err
	}
	a.ClosedAt = &now
	if condition != "" {
		a.ConditionAtReturn = condition
	}
	return a, nil
}

// transition moves the assignment to a new status with a compare-and-set on
// the row, so a concurrent close observed between the read and this write
// matches zero rows instead of overwriting it. Only the winning transition
// touches the ledger.
func (s *Service) transition(db *gorm.DB, a *Assignment, to AssignmentStatus, updates map[string]interface{}) error {
	updates["status"] = to
	res := db.Model(&Assignment{}).Where("id = ? AND status = ?", a.ID, a.Status).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update assignment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: assignment %d was modified concurrently", apperrors.ErrInvalidStateTransition, a.ID)
	}
	a.Status = to
	return nil
}
