package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assetdesk/internal/config"
	"assetdesk/internal/db"
	"assetdesk/internal/model"
	"assetdesk/internal/repository"
)

// SeedEquipmentData represents one record in the seed file.
type SeedEquipmentData struct {
	AssetID       string `json:"assetId"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	Model         string `json:"model"`
	SerialNumber  string `json:"serialNumber"`
	Location      string `json:"location"`
	PurchasePrice string `json:"purchasePrice"`
	AssigneeName  string `json:"assigneeName"`
	EmployeeEmail string `json:"employeeEmail"`
	Department    string `json:"department"`
}

var defaultSeed = []SeedEquipmentData{
	{AssetID: "LAP-001", Category: "Laptop", Status: "In Use", Model: "ThinkPad T14", SerialNumber: "PF3XK001", Location: "HQ 2F", PurchasePrice: "1299.00", AssigneeName: "Dana Reyes", EmployeeEmail: "dana.reyes@example.com", Department: "Engineering"},
	{AssetID: "LAP-002", Category: "Laptop", Status: "In Stock", Model: "MacBook Air M2", SerialNumber: "FVFFK102", Location: "IT storage", PurchasePrice: "1199.00"},
	{AssetID: "MON-001", Category: "Monitor", Status: "In Stock", Model: "Dell U2723QE", SerialNumber: "CN-0H7J1", Location: "IT storage", PurchasePrice: "549.99"},
	{AssetID: "KEY-001", Category: "Keyboard", Status: "In Use", Model: "Keychron K2", SerialNumber: "KC2-4471", Location: "HQ 3F", PurchasePrice: "89.00", AssigneeName: "Priya Nair", EmployeeEmail: "priya.nair@example.com", Department: "Finance"},
	{AssetID: "HEA-001", Category: "Headset", Status: "Damaged", Model: "Jabra Evolve2", SerialNumber: "JB-99810", Location: "IT storage", PurchasePrice: "229.00"},
}

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.Equipment{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	seedData := defaultSeed
	if len(os.Args) > 1 {
		log.Printf("Loading seed data from: %s", os.Args[1])
		seedData, err = loadSeedFile(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to load seed file: %v", err)
		}
	}
	log.Printf("Loaded %d equipment records", len(seedData))

	// Convert to model.Equipment
	records := make([]model.Equipment, 0, len(seedData))
	skipped := 0
	for _, item := range seedData {
		status := model.Status(item.Status)
		if !status.Valid() {
			log.Printf("Skipping record %s with invalid status: %s", item.AssetID, item.Status)
			skipped++
			continue
		}

		price := decimal.Zero
		if item.PurchasePrice != "" {
			price, err = decimal.NewFromString(item.PurchasePrice)
			if err != nil {
				log.Printf("Skipping record %s with invalid price: %s", item.AssetID, item.PurchasePrice)
				skipped++
				continue
			}
		}

		records = append(records, model.Equipment{
			AssetID:       item.AssetID,
			Category:      item.Category,
			Status:        status,
			Model:         item.Model,
			SerialNumber:  item.SerialNumber,
			Location:      item.Location,
			PurchasePrice: price,
			AssigneeName:  item.AssigneeName,
			EmployeeEmail: item.EmployeeEmail,
			Department:    item.Department,
		})
	}

	if skipped > 0 {
		log.Printf("Skipped %d invalid records", skipped)
	}

	repo := repository.NewEquipmentRepository(gormDB)
	ctx := context.Background()

	log.Println("Seeding equipment into database...")
	created, existing, err := seedEquipment(ctx, gormDB, repo, records)
	if err != nil {
		log.Fatalf("Failed to seed equipment: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New records created: %d", created)
	log.Printf("  - Already present, left untouched: %d", existing)
}

// loadSeedFile reads seed records from a JSON file.
func loadSeedFile(path string) ([]SeedEquipmentData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []SeedEquipmentData
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return records, nil
}

// seedEquipment inserts records that are not present yet, keyed by asset ID.
func seedEquipment(ctx context.Context, gormDB *gorm.DB, repo repository.EquipmentRepository, records []model.Equipment) (created int, existing int, err error) {
	for i := range records {
		var count int64
		if err := gormDB.WithContext(ctx).Model(&model.Equipment{}).
			Where("asset_id = ?", records[i].AssetID).
			Count(&count).Error; err != nil {
			return created, existing, fmt.Errorf("check record %s: %w", records[i].AssetID, err)
		}
		if count > 0 {
			existing++
			continue
		}
		if err := repo.Create(ctx, &records[i]); err != nil {
			return created, existing, fmt.Errorf("create record %s: %w", records[i].AssetID, err)
		}
		created++
	}
	return created, existing, nil
}
