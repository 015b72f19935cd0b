package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assetdesk/internal/cache"
	apperrors "assetdesk/internal/errors"
	"assetdesk/internal/model"
	"assetdesk/internal/repository"
)

const (
	// warrantyLookahead is the alert horizon for expiring warranties.
	warrantyLookahead = 30 * 24 * time.Hour

	summaryCacheKey = "equipment:summary"
	summaryCacheTTL = 30 * time.Second

	fallbackAssetPrefix = "OTH"
	assetSequenceWidth  = 3
)

// CreateEquipmentInput carries a create request. Date fields arrive as
// strings and are parsed leniently: an unparseable date is stored as null
// rather than rejecting the request.
type CreateEquipmentInput struct {
	AssetID           string
	Category          string
	Status            string
	Model             string
	SerialNumber      string
	Location          string
	Comment           string
	WarrantyExpiry    string
	PurchaseDate      string
	PurchasePrice     decimal.Decimal
	AssigneeName      string
	Position          string
	EmployeeEmail     string
	PhoneNumber       string
	Department        string
	DamageDescription string
}

// UpdateEquipmentInput carries a partial update; nil fields stay unchanged.
type UpdateEquipmentInput struct {
	AssetID           *string
	Category          *string
	Status            *string
	Model             *string
	SerialNumber      *string
	Location          *string
	Comment           *string
	WarrantyExpiry    *string
	PurchaseDate      *string
	PurchasePrice     *decimal.Decimal
	AssigneeName      *string
	Position          *string
	EmployeeEmail     *string
	PhoneNumber       *string
	Department        *string
	DamageDescription *string
}

// Summary holds per-status counts over non-deleted records. The removed
// bucket is a rollup of everything gone or problematic: it unions E-Waste,
// Damaged, Removed and soft-deleted records, so a Damaged record contributes
// to both damaged and removed.
type Summary struct {
	TotalAssets int64 `json:"totalAssets"`
	InUse       int64 `json:"inUse"`
	InStock     int64 `json:"inStock"`
	Damaged     int64 `json:"damaged"`
	EWaste      int64 `json:"eWaste"`
	Removed     int64 `json:"removed"`
}

// WarrantyAlert is the minimal projection returned by the expiring-warranty view.
type WarrantyAlert struct {
	ID             uuid.UUID `json:"id"`
	AssetID        string    `json:"assetId"`
	Category       string    `json:"category"`
	Model          string    `json:"model,omitempty"`
	SerialNumber   string    `json:"serialNumber,omitempty"`
	Location       string    `json:"location,omitempty"`
	WarrantyExpiry time.Time `json:"warrantyExpiry"`
}

// AssigneeGroup buckets In Use equipment by the current assignee.
type AssigneeGroup struct {
	EmployeeEmail string            `json:"employeeEmail"`
	AssigneeName  string            `json:"assigneeName,omitempty"`
	Department    string            `json:"department,omitempty"`
	Assets        []model.Equipment `json:"assets"`
}

// EquipmentService handles equipment lifecycle operations.
type EquipmentService interface {
	Create(ctx context.Context, in CreateEquipmentInput) (*model.Equipment, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateEquipmentInput) (*model.Equipment, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Equipment, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	Summary(ctx context.Context) (*Summary, error)
	ExpiringWarranty(ctx context.Context) ([]WarrantyAlert, error)
	GroupedByEmail(ctx context.Context) ([]AssigneeGroup, error)
	GenerateAssetID(ctx context.Context, category string) (string, error)
}

type equipmentService struct {
	repo  repository.EquipmentRepository
	cache *cache.Client
	now   func() time.Time
}

// NewEquipmentService creates a new equipment service.
func NewEquipmentService(repo repository.EquipmentRepository, cacheClient *cache.Client) EquipmentService {
	return &equipmentService{
		repo:  repo,
		cache: cacheClient,
		now:   time.Now,
	}
}

// Create validates the payload, applies the status rules, generates an asset
// ID when the caller did not supply one, and persists the record.
func (s *equipmentService) Create(ctx context.Context, in CreateEquipmentInput) (*model.Equipment, error) {
	var fields []string

	category := strings.TrimSpace(in.Category)
	if category == "" {
		fields = append(fields, "category is required")
	}

	status := model.StatusInStock
	if strings.TrimSpace(in.Status) != "" {
		status = model.Status(in.Status)
		if !status.Valid() {
			fields = append(fields, fmt.Sprintf("status must be one of %s", statusList()))
		}
	}

	if in.PurchasePrice.IsNegative() {
		fields = append(fields, "purchasePrice must not be negative")
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields...)
	}

	assetID := strings.TrimSpace(in.AssetID)
	if assetID == "" {
		generated, err := s.GenerateAssetID(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("generate asset id: %w", err)
		}
		assetID = generated
	}

	eq := &model.Equipment{
		AssetID:       assetID,
		Category:      category,
		Status:        status,
		Model:         in.Model,
		SerialNumber:  in.SerialNumber,
		Location:      in.Location,
		Comment:       in.Comment,
		PurchasePrice: in.PurchasePrice,
		AssigneeName:  in.AssigneeName,
		Position:      in.Position,
		EmployeeEmail: in.EmployeeEmail,
		PhoneNumber:   in.PhoneNumber,
		Department:    in.Department,

		WarrantyExpiry: parseDateLenient(in.WarrantyExpiry),
		PurchaseDate:   parseDateLenient(in.PurchaseDate),
	}
	eq.DamageDescription = damageDescriptionFor(status, in.DamageDescription)

	if err := s.repo.Create(ctx, eq); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateAssetID
		}
		return nil, fmt.Errorf("create equipment: %w", err)
	}

	s.invalidateSummary(ctx)
	return eq, nil
}

// Update merges the supplied fields into the stored record after applying the
// status transition rules.
func (s *equipmentService) Update(ctx context.Context, id uuid.UUID, in UpdateEquipmentInput) (*model.Equipment, error) {
	eq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("find equipment: %w", err)
	}

	var fields []string

	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			fields = append(fields, "category must not be empty")
		} else {
			eq.Category = category
		}
	}

	status := eq.Status
	if in.Status != nil {
		status = model.Status(*in.Status)
		if !status.Valid() {
			fields = append(fields, fmt.Sprintf("status must be one of %s", statusList()))
		}
	}

	if in.PurchasePrice != nil {
		if in.PurchasePrice.IsNegative() {
			fields = append(fields, "purchasePrice must not be negative")
		} else {
			eq.PurchasePrice = *in.PurchasePrice
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields...)
	}

	eq.Status = status

	if in.AssetID != nil && strings.TrimSpace(*in.AssetID) != "" {
		eq.AssetID = strings.TrimSpace(*in.AssetID)
	}
	if in.Model != nil {
		eq.Model = *in.Model
	}
	if in.SerialNumber != nil {
		eq.SerialNumber = *in.SerialNumber
	}
	if in.Location != nil {
		eq.Location = *in.Location
	}
	if in.Comment != nil {
		eq.Comment = *in.Comment
	}
	if in.WarrantyExpiry != nil {
		eq.WarrantyExpiry = parseDateLenient(*in.WarrantyExpiry)
	}
	if in.PurchaseDate != nil {
		eq.PurchaseDate = parseDateLenient(*in.PurchaseDate)
	}
	if in.AssigneeName != nil {
		eq.AssigneeName = *in.AssigneeName
	}
	if in.Position != nil {
		eq.Position = *in.Position
	}
	if in.EmployeeEmail != nil {
		eq.EmployeeEmail = *in.EmployeeEmail
	}
	if in.PhoneNumber != nil {
		eq.PhoneNumber = *in.PhoneNumber
	}
	if in.Department != nil {
		eq.Department = *in.Department
	}

	// Leaving Damaged always clears the description, whatever the payload said.
	if status != model.StatusDamaged {
		eq.DamageDescription = nil
	} else if in.DamageDescription != nil {
		eq.DamageDescription = damageDescriptionFor(status, *in.DamageDescription)
	}

	if err := s.repo.Save(ctx, eq); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateAssetID
		}
		return nil, fmt.Errorf("update equipment: %w", err)
	}

	s.invalidateSummary(ctx)
	return eq, nil
}

// SoftDelete flips the deletion flag. Deleting an already-deleted record is a
// no-op, not an error.
func (s *equipmentService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	eq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrEquipmentNotFound
		}
		return fmt.Errorf("find equipment: %w", err)
	}

	if eq.IsDeleted {
		return nil
	}

	eq.IsDeleted = true
	if err := s.repo.Save(ctx, eq); err != nil {
		return fmt.Errorf("soft delete equipment: %w", err)
	}

	s.invalidateSummary(ctx)
	return nil
}

func (s *equipmentService) List(ctx context.Context) ([]model.Equipment, error) {
	return s.repo.List(ctx)
}

func (s *equipmentService) CountByCategory(ctx context.Context, category string) (int64, error) {
	return s.repo.CountByCategory(ctx, category)
}

// Summary assembles per-status counts, serving from the cache when fresh.
func (s *equipmentService) Summary(ctx context.Context) (*Summary, error) {
	if data, _ := s.cache.Get(ctx, summaryCacheKey); data != nil {
		var cached Summary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	total, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count equipment: %w", err)
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count equipment by status: %w", err)
	}
	removed, err := s.repo.CountRetiredOrDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("count retired equipment: %w", err)
	}

	summary := &Summary{
		TotalAssets: total,
		InUse:       byStatus[model.StatusInUse],
		InStock:     byStatus[model.StatusInStock],
		Damaged:     byStatus[model.StatusDamaged],
		EWaste:      byStatus[model.StatusEWaste],
		Removed:     removed,
	}

	if payload, err := json.Marshal(summary); err == nil {
		_ = s.cache.Set(ctx, summaryCacheKey, payload, summaryCacheTTL)
	}
	return summary, nil
}

// ExpiringWarranty returns alerts for records whose warranty expires within
// the next 30 days. Recomputed on every request.
func (s *equipmentService) ExpiringWarranty(ctx context.Context) ([]WarrantyAlert, error) {
	now := s.now()
	records, err := s.repo.ExpiringWarranty(ctx, now, now.Add(warrantyLookahead))
	if err != nil {
		return nil, fmt.Errorf("query expiring warranties: %w", err)
	}

	alerts := make([]WarrantyAlert, 0, len(records))
	for _, eq := range records {
		if eq.WarrantyExpiry == nil {
			continue
		}
		alerts = append(alerts, WarrantyAlert{
			ID:             eq.ID,
			AssetID:        eq.AssetID,
			Category:       eq.Category,
			Model:          eq.Model,
			SerialNumber:   eq.SerialNumber,
			Location:       eq.Location,
			WarrantyExpiry: *eq.WarrantyExpiry,
		})
	}
	return alerts, nil
}

// GroupedByEmail buckets In Use records by assignee email, sorted by email
// for stable output.
func (s *equipmentService) GroupedByEmail(ctx context.Context) ([]AssigneeGroup, error) {
	records, err := s.repo.ListInUse(ctx)
	if err != nil {
		return nil, fmt.Errorf("list in-use equipment: %w", err)
	}

	buckets := make(map[string]*AssigneeGroup)
	for _, eq := range records {
		group, ok := buckets[eq.EmployeeEmail]
		if !ok {
			group = &AssigneeGroup{
				EmployeeEmail: eq.EmployeeEmail,
				AssigneeName:  eq.AssigneeName,
				Department:    eq.Department,
			}
			buckets[eq.EmployeeEmail] = group
		}
		group.Assets = append(group.Assets, eq)
	}

	groups := make([]AssigneeGroup, 0, len(buckets))
	for _, group := range buckets {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].EmployeeEmail < groups[j].EmployeeEmail
	})
	return groups, nil
}

// GenerateAssetID derives a human-readable identifier from the category and
// the running count of non-deleted records in it. The count-then-compose
// sequence is not atomic with the insert; the unique index on asset_id turns
// a concurrent collision into a DuplicateAssetID error for one caller.
func (s *equipmentService) GenerateAssetID(ctx context.Context, category string) (string, error) {
	count, err := s.repo.CountByCategory(ctx, category)
	if err != nil {
		return "", fmt.Errorf("count category %q: %w", category, err)
	}
	return fmt.Sprintf("%s-%0*d", assetIDPrefix(category), assetSequenceWidth, count+1), nil
}

func (s *equipmentService) invalidateSummary(ctx context.Context) {
	_ = s.cache.Delete(ctx, summaryCacheKey)
}

// assetIDPrefix returns the first three letters of the category uppercased,
// or OTH for an empty category.
func assetIDPrefix(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return fallbackAssetPrefix
	}
	runes := []rune(trimmed)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}

// damageDescriptionFor applies the clearing rule: a description survives only
// while the record is Damaged.
func damageDescriptionFor(status model.Status, description string) *string {
	if status != model.StatusDamaged {
		return nil
	}
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseDateLenient parses a date string in the accepted formats; anything
// unparseable (including empty) maps to null instead of an error.
func parseDateLenient(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}

func statusList() string {
	names := make([]string, len(model.Statuses))
	for i, st := range model.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
