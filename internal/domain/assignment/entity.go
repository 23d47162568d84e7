// internal/domain/assignment/entity.go
package assignment

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AssignmentStatus represents the assignment lifecycle status
type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "assigned"
	AssignmentStatusReturned AssignmentStatus = "returned"
	AssignmentStatusLost     AssignmentStatus = "lost"
	AssignmentStatusDamaged  AssignmentStatus = "damaged"
	AssignmentStatusExpended AssignmentStatus = "expended"
)

// EquipmentCondition describes the state of issued equipment
type EquipmentCondition string

const (
	ConditionExcellent EquipmentCondition = "excellent"
	ConditionGood      EquipmentCondition = "good"
	ConditionFair      EquipmentCondition = "fair"
	ConditionPoor      EquipmentCondition = "poor"
	ConditionDamaged   EquipmentCondition = "damaged"
	ConditionLost      EquipmentCondition = "lost"
)

// Personnel identifies the service member equipment is issued to
type Personnel struct {
	PersonnelID string `gorm:"size:50;not null" json:"personnel_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Rank        string `gorm:"size:100;not null" json:"rank"`
	Unit        string `gorm:"size:255;not null" json:"unit"`
}

// Assignment represents equipment issued from a base's stock to a service
// member. Creating an assignment debits the ledger immediately; only a return
// credits it back. Lost, damaged and expended are record-keeping outcomes
// that leave the units booked against the assignment.
type Assignment struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	AssignmentNumber string           `gorm:"uniqueIndex;not null;size:50" json:"assignment_number"`
	AssetID          uint             `gorm:"not null;index" json:"asset_id"`
	BaseID           uint             `gorm:"not null;index" json:"base_id"`
	Quantity         int              `gorm:"not null" json:"quantity"`
	Status           AssignmentStatus `gorm:"not null;default:'assigned';index" json:"status"`

	AssignedTo Personnel `gorm:"embedded;embeddedPrefix:assigned_to_" json:"assigned_to"`

	Purpose string `gorm:"size:500;not null" json:"purpose"`
	Notes   string `gorm:"type:text" json:"notes"`

	ConditionAtIssue  EquipmentCondition `gorm:"size:20;default:'good'" json:"condition_at_issue"`
	ConditionAtReturn EquipmentCondition `gorm:"size:20" json:"condition_at_return"`

	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	ReturnedAt         *time.Time `json:"returned_at"`
	ClosedAt           *time.Time `json:"closed_at"`

	AssignedBy uint           `gorm:"not null" json:"assigned_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for Assignment model
func (Assignment) TableName() string {
	return "assignments"
}

// IsTerminal returns true when no further transitions are allowed
func (a *Assignment) IsTerminal() bool {
	return a.Status != AssignmentStatusAssigned
}

// GenerateAssignmentNumber generates a unique assignment number
func (a *Assignment) GenerateAssignmentNumber() string {
	return fmt.Sprintf("ASG-%s-%05d", time.Now().Format("20060102"), a.ID)
}

// ValidCondition checks if the condition value is recognized
func ValidCondition(c EquipmentCondition) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}
