package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "assetdesk/internal/errors"
	"assetdesk/internal/model"
)

// MockEquipmentRepository is a mock implementation of EquipmentRepository.
type MockEquipmentRepository struct {
	mock.Mock
}

func (m *MockEquipmentRepository) Create(ctx context.Context, eq *model.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}

func (m *MockEquipmentRepository) Save(ctx context.Context, eq *model.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}

func (m *MockEquipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) List(ctx context.Context) ([]model.Equipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) ListInUse(ctx context.Context) ([]model.Equipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEquipmentRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEquipmentRepository) CountByStatus(ctx context.Context) (map[model.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Status]int64), args.Error(1)
}

func (m *MockEquipmentRepository) CountRetiredOrDeleted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEquipmentRepository) ExpiringWarranty(ctx context.Context, from, to time.Time) ([]model.Equipment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Equipment), args.Error(1)
}

// newTestService builds an equipment service with a nil cache. The cache
// wrapper treats nil as a permanent miss, so tests exercise the real paths.
func newTestService(repo *MockEquipmentRepository) *equipmentService {
	return &equipmentService{repo: repo, cache: nil, now: time.Now}
}

func TestEquipmentService_Create(t *testing.T) {
	tests := []struct {
		name          string
		input         CreateEquipmentInput
		setupMock     func(*MockEquipmentRepository)
		expectedError error
		check         func(*testing.T, *model.Equipment)
	}{
		{
			name: "generates asset ID when absent",
			input: CreateEquipmentInput{
				Category: "Laptop",
				Status:   "In Stock",
			},
			setupMock: func(m *MockEquipmentRepository) {
				m.On("CountByCategory", mock.Anything, "Laptop").Return(int64(4), nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)
			},
			check: func(t *testing.T, eq *model.Equipment) {
				assert.Equal(t, "LAP-005", eq.AssetID)
			},
		},
		{
			name: "keeps caller-supplied asset ID",
			input: CreateEquipmentInput{
				AssetID:  "MON-042",
				Category: "Monitor",
			},
			setupMock: func(m *MockEquipmentRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)
			},
			check: func(t *testing.T, eq *model.Equipment) {
				assert.Equal(t, "MON-042", eq.AssetID)
				assert.Equal(t, model.StatusInStock, eq.Status)
			},
		},
		{
			name:          "missing category fails validation",
			input:         CreateEquipmentInput{Status: "In Stock"},
			setupMock:     func(m *MockEquipmentRepository) {},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name: "unknown status fails validation",
			input: CreateEquipmentInput{
				Category: "Laptop",
				Status:   "Lost",
			},
			setupMock:     func(m *MockEquipmentRepository) {},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name: "negative purchase price fails validation",
			input: CreateEquipmentInput{
				Category:      "Laptop",
				PurchasePrice: decimal.NewFromInt(-10),
			},
			setupMock:     func(m *MockEquipmentRepository) {},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name: "malformed warranty date is stored as absent",
			input: CreateEquipmentInput{
				AssetID:        "LAP-010",
				Category:       "Laptop",
				WarrantyExpiry: "not-a-date",
			},
			setupMock: func(m *MockEquipmentRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)
			},
			check: func(t *testing.T, eq *model.Equipment) {
				assert.Nil(t, eq.WarrantyExpiry)
			},
		},
		{
			name: "damage description dropped unless status is Damaged",
			input: CreateEquipmentInput{
				AssetID:           "LAP-011",
				Category:          "Laptop",
				Status:            "In Stock",
				DamageDescription: "cracked screen",
			},
			setupMock: func(m *MockEquipmentRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)
			},
			check: func(t *testing.T, eq *model.Equipment) {
				assert.Nil(t, eq.DamageDescription)
			},
		},
		{
			name: "damage description kept for Damaged records",
			input: CreateEquipmentInput{
				AssetID:           "LAP-012",
				Category:          "Laptop",
				Status:            "Damaged",
				DamageDescription: "cracked screen",
			},
			setupMock: func(m *MockEquipmentRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)
			},
			check: func(t *testing.T, eq *model.Equipment) {
				if assert.NotNil(t, eq.DamageDescription) {
					assert.Equal(t, "cracked screen", *eq.DamageDescription)
				}
			},
		},
		{
			name: "duplicate asset ID surfaces as DuplicateAssetID",
			input: CreateEquipmentInput{
				AssetID:  "LAP-001",
				Category: "Laptop",
			},
			setupMock: func(m *MockEquipmentRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateAssetID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockEquipmentRepository)
			tt.setupMock(mockRepo)

			svc := newTestService(mockRepo)
			eq, err := svc.Create(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if _, isValidation := tt.expectedError.(*apperrors.ValidationError); isValidation {
					var validationErr *apperrors.ValidationError
					assert.ErrorAs(t, err, &validationErr)
				} else {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, eq)
			} else {
				assert.NoError(t, err)
				if assert.NotNil(t, eq) && tt.check != nil {
					tt.check(t, eq)
				}
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEquipmentService_Create_ValidationListsEveryField(t *testing.T) {
	mockRepo := new(MockEquipmentRepository)
	svc := newTestService(mockRepo)

	_, err := svc.Create(context.Background(), CreateEquipmentInput{
		Status:        "Broken",
		PurchasePrice: decimal.NewFromInt(-1),
	})

	var validationErr *apperrors.ValidationError
	if assert.ErrorAs(t, err, &validationErr) {
		assert.Len(t, validationErr.Fields, 3)
		assert.Contains(t, err.Error(), "category is required")
		assert.Contains(t, err.Error(), "status must be one of")
		assert.Contains(t, err.Error(), "purchasePrice must not be negative")
	}
}

func TestEquipmentService_Update(t *testing.T) {
	recordID := uuid.New()
	damaged := func() *model.Equipment {
		desc := "water damage"
		return &model.Equipment{
			ID:                recordID,
			AssetID:           "LAP-003",
			Category:          "Laptop",
			Status:            model.StatusDamaged,
			DamageDescription: &desc,
		}
	}

	t.Run("leaving Damaged clears the description", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).Return(damaged(), nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)

		svc := newTestService(mockRepo)
		newStatus := "In Stock"
		keepDescription := "still broken"
		eq, err := svc.Update(context.Background(), recordID, UpdateEquipmentInput{
			Status:            &newStatus,
			DamageDescription: &keepDescription,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusInStock, eq.Status)
		assert.Nil(t, eq.DamageDescription)
		mockRepo.AssertExpectations(t)
	})

	t.Run("staying Damaged keeps the supplied description", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).Return(damaged(), nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(nil)

		svc := newTestService(mockRepo)
		newDescription := "keyboard missing keys"
		eq, err := svc.Update(context.Background(), recordID, UpdateEquipmentInput{
			DamageDescription: &newDescription,
		})

		assert.NoError(t, err)
		if assert.NotNil(t, eq.DamageDescription) {
			assert.Equal(t, newDescription, *eq.DamageDescription)
		}
	})

	t.Run("missing record maps to not found", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestService(mockRepo)
		_, err := svc.Update(context.Background(), recordID, UpdateEquipmentInput{})

		assert.ErrorIs(t, err, apperrors.ErrEquipmentNotFound)
	})

	t.Run("unknown status fails validation", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).Return(damaged(), nil)

		svc := newTestService(mockRepo)
		bad := "Exploded"
		_, err := svc.Update(context.Background(), recordID, UpdateEquipmentInput{Status: &bad})

		var validationErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("duplicate asset ID on update", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).Return(damaged(), nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.Equipment")).Return(gorm.ErrDuplicatedKey)

		svc := newTestService(mockRepo)
		taken := "LAP-001"
		_, err := svc.Update(context.Background(), recordID, UpdateEquipmentInput{AssetID: &taken})

		assert.ErrorIs(t, err, apperrors.ErrDuplicateAssetID)
	})
}

func TestEquipmentService_SoftDelete(t *testing.T) {
	recordID := uuid.New()

	t.Run("flags the record", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).
			Return(&model.Equipment{ID: recordID, Status: model.StatusInStock}, nil)
		mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(eq *model.Equipment) bool {
			return eq.IsDeleted
		})).Return(nil)

		svc := newTestService(mockRepo)
		assert.NoError(t, svc.SoftDelete(context.Background(), recordID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("second delete is a no-op", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).
			Return(&model.Equipment{ID: recordID, IsDeleted: true}, nil)

		svc := newTestService(mockRepo)
		assert.NoError(t, svc.SoftDelete(context.Background(), recordID))
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing record maps to not found", func(t *testing.T) {
		mockRepo := new(MockEquipmentRepository)
		mockRepo.On("FindByID", mock.Anything, recordID).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestService(mockRepo)
		assert.ErrorIs(t, svc.SoftDelete(context.Background(), recordID), apperrors.ErrEquipmentNotFound)
	})
}

func TestEquipmentService_Summary(t *testing.T) {
	// 3 In Stock, 2 In Use, 1 Damaged, 1 E-Waste non-deleted, plus one
	// soft-deleted In Stock record excluded from the status buckets but
	// counted in the removed rollup.
	mockRepo := new(MockEquipmentRepository)
	mockRepo.On("CountActive", mock.Anything).Return(int64(7), nil)
	mockRepo.On("CountByStatus", mock.Anything).Return(map[model.Status]int64{
		model.StatusInStock: 3,
		model.StatusInUse:   2,
		model.StatusDamaged: 1,
		model.StatusEWaste:  1,
	}, nil)
	mockRepo.On("CountRetiredOrDeleted", mock.Anything).Return(int64(3), nil)

	svc := newTestService(mockRepo)
	summary, err := svc.Summary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, &Summary{
		TotalAssets: 7,
		InUse:       2,
		InStock:     3,
		Damaged:     1,
		EWaste:      1,
		Removed:     3,
	}, summary)
}

func TestEquipmentService_ExpiringWarranty(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	mockRepo := new(MockEquipmentRepository)
	mockRepo.On("ExpiringWarranty", mock.Anything, now, now.Add(30*24*time.Hour)).
		Return([]model.Equipment{
			{AssetID: "LAP-001", Category: "Laptop", Status: model.StatusInStock, WarrantyExpiry: &expiry},
		}, nil)

	svc := &equipmentService{repo: mockRepo, now: func() time.Time { return now }}
	alerts, err := svc.ExpiringWarranty(context.Background())

	assert.NoError(t, err)
	if assert.Len(t, alerts, 1) {
		assert.Equal(t, "LAP-001", alerts[0].AssetID)
		assert.Equal(t, expiry, alerts[0].WarrantyExpiry)
	}
	mockRepo.AssertExpectations(t)
}

func TestEquipmentService_GroupedByEmail(t *testing.T) {
	mockRepo := new(MockEquipmentRepository)
	mockRepo.On("ListInUse", mock.Anything).Return([]model.Equipment{
		{AssetID: "LAP-001", Status: model.StatusInUse, EmployeeEmail: "b@example.com", AssigneeName: "B"},
		{AssetID: "MON-001", Status: model.StatusInUse, EmployeeEmail: "a@example.com", AssigneeName: "A"},
		{AssetID: "KEY-001", Status: model.StatusInUse, EmployeeEmail: "a@example.com", AssigneeName: "A"},
	}, nil)

	svc := newTestService(mockRepo)
	groups, err := svc.GroupedByEmail(context.Background())

	assert.NoError(t, err)
	if assert.Len(t, groups, 2) {
		assert.Equal(t, "a@example.com", groups[0].EmployeeEmail)
		assert.Len(t, groups[0].Assets, 2)
		assert.Equal(t, "b@example.com", groups[1].EmployeeEmail)
		assert.Len(t, groups[1].Assets, 1)
	}
}

func TestGenerateAssetID(t *testing.T) {
	tests := []struct {
		name     string
		category string
		count    int64
		expected string
	}{
		{"three letter prefix", "Laptop", 0, "LAP-001"},
		{"short category", "TV", 7, "TV-008"},
		{"empty category falls back", "", 0, "OTH-001"},
		{"lowercase category", "mouse", 11, "MOU-012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockEquipmentRepository)
			mockRepo.On("CountByCategory", mock.Anything, tt.category).Return(tt.count, nil)

			svc := newTestService(mockRepo)
			id, err := svc.GenerateAssetID(context.Background(), tt.category)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestParseDateLenient(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantNil bool
	}{
		{"rfc3339", "2024-01-15T10:30:00Z", false},
		{"date only", "2024-01-15", false},
		{"empty", "", true},
		{"garbage", "next tuesday", true},
		{"partial", "2024-13-45", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDateLenient(tt.value)
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
			}
		})
	}
}
