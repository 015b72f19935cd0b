package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status represents the lifecycle stage of an equipment record. It governs
// which auxiliary fields are meaningful: assignment fields apply to In Use
// records, DamageDescription applies to Damaged ones.
type Status string

const (
	StatusInUse   Status = "In Use"
	StatusInStock Status = "In Stock"
	StatusDamaged Status = "Damaged"
	StatusEWaste  Status = "E-Waste"
	StatusRemoved Status = "Removed"
)

// Statuses lists every accepted status value.
var Statuses = []Status{StatusInUse, StatusInStock, StatusDamaged, StatusEWaste, StatusRemoved}

// Valid reports whether s is one of the defined status values.
func (s Status) Valid() bool {
	switch s {
	case StatusInUse, StatusInStock, StatusDamaged, StatusEWaste, StatusRemoved:
		return true
	}
	return false
}

// Equipment represents a tracked IT asset.
type Equipment struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	AssetID      string    `json:"assetId" gorm:"uniqueIndex;size:64;not null"` // Immutable after creation
	Category     string    `json:"category" gorm:"size:100;not null;index"`
	Status       Status    `json:"status" gorm:"type:varchar(20);not null;default:'In Stock';index"`
	Model        string    `json:"model,omitempty" gorm:"size:255"`
	SerialNumber string    `json:"serialNumber,omitempty" gorm:"size:255"`
	Location     string    `json:"location,omitempty" gorm:"size:255"`
	Comment      string    `json:"comment,omitempty" gorm:"size:1024"`

	WarrantyExpiry *time.Time      `json:"warrantyExpiry,omitempty"`
	PurchaseDate   *time.Time      `json:"purchaseDate,omitempty"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice" gorm:"type:decimal(20,2);default:0"`

	// Assignment fields, meaningful only while Status is In Use.
	AssigneeName  string `json:"assigneeName,omitempty" gorm:"size:255"`
	Position      string `json:"position,omitempty" gorm:"size:255"`
	EmployeeEmail string `json:"employeeEmail,omitempty" gorm:"size:255;index"`
	PhoneNumber   string `json:"phoneNumber,omitempty" gorm:"size:64"`
	Department    string `json:"department,omitempty" gorm:"size:255"`

	// Meaningful only while Status is Damaged; cleared on any transition away.
	DamageDescription *string `json:"damageDescription,omitempty" gorm:"size:1024"`

	// Soft delete: flagged records stay addressable by ID but drop out of
	// listing, count and summary queries.
	IsDeleted bool `json:"isDeleted" gorm:"default:false;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
