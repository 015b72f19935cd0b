package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"assetdesk/internal/model"
)

// EquipmentRepository defines equipment persistence operations. Soft-deleted
// records stay in the table: FindByID still reaches them, every other query
// filters them out.
type EquipmentRepository interface {
	Create(ctx context.Context, eq *model.Equipment) error
	Save(ctx context.Context, eq *model.Equipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error)
	List(ctx context.Context) ([]model.Equipment, error)
	ListInUse(ctx context.Context) ([]model.Equipment, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[model.Status]int64, error)
	CountRetiredOrDeleted(ctx context.Context) (int64, error)
	ExpiringWarranty(ctx context.Context, from, to time.Time) ([]model.Equipment, error)
}

type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository builds a GORM-backed repository.
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(ctx context.Context, eq *model.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *equipmentRepository) Save(ctx context.Context, eq *model.Equipment) error {
	return r.db.WithContext(ctx).Save(eq).Error
}

// FindByID finds a record by ID, including soft-deleted ones.
func (r *equipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	var eq model.Equipment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

// List returns non-deleted records, newest first.
func (r *equipmentRepository) List(ctx context.Context) ([]model.Equipment, error) {
	var records []model.Equipment
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListInUse returns non-deleted In Use records, newest first.
func (r *equipmentRepository) ListInUse(ctx context.Context) ([]model.Equipment, error) {
	var records []model.Equipment
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND status = ?", false, model.StatusInUse).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *equipmentRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Equipment{}).
		Where("is_deleted = ? AND category = ?", false, category).
		Count(&count).Error
	return count, err
}

// CountActive counts all non-deleted records.
func (r *equipmentRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Equipment{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

// CountByStatus returns per-status counts over non-deleted records.
func (r *equipmentRepository) CountByStatus(ctx context.Context) (map[model.Status]int64, error) {
	var rows []struct {
		Status model.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Equipment{}).
		Select("status, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountRetiredOrDeleted counts the union of soft-deleted records and records
// whose status is E-Waste, Damaged or Removed.
func (r *equipmentRepository) CountRetiredOrDeleted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Equipment{}).
		Where("is_deleted = ? OR status IN ?", true,
			[]model.Status{model.StatusEWaste, model.StatusDamaged, model.StatusRemoved}).
		Count(&count).Error
	return count, err
}

// ExpiringWarranty returns non-deleted, non-retired records whose warranty
// expires within [from, to] inclusive.
func (r *equipmentRepository) ExpiringWarranty(ctx context.Context, from, to time.Time) ([]model.Equipment, error) {
	var records []model.Equipment
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("status NOT IN ?", []model.Status{model.StatusEWaste, model.StatusDamaged, model.StatusRemoved}).
		Where("warranty_expiry IS NOT NULL AND warranty_expiry BETWEEN ? AND ?", from, to).
		Order("warranty_expiry ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
