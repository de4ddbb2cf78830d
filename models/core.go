package models

import (
	"errors"
	"log"

	"github.com/4rk4ng3l/TowerFormsBackEnd/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

func InitDB() {
	var err error
	DB, err = gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	DB.NamingStrategy = schema.NamingStrategy{
		SingularTable: true,
	}

	if err := migrateAllTables(DB); err != nil {
		log.Printf("Failed to migrate tables: %v", err)
	}

	initDefaultUser(DB)
}

// OpenTestDB opens a throwaway SQLite database with the full schema.
func OpenTestDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	db.NamingStrategy = schema.NamingStrategy{
		SingularTable: true,
	}
	if err := migrateAllTables(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrateAllTables(db *gorm.DB) error {
	models := []interface{}{
		&TechUser{},
		&Form{},
		&FormStep{},
		&Question{},
		&Submission{},
		&Answer{},
		&File{},
		&Site{},
		&InventoryEE{},
		&InventoryEP{},
	}

	return db.AutoMigrate(models...)
}

// initDefaultUser seeds the fallback inspector used for anonymous submissions.
func initDefaultUser(db *gorm.DB) {
	user := TechUser{
		ID:        "00000000-0000-0000-0000-000000000000",
		Email:     "campo@ienercom.local",
		FirstName: "Técnico",
		LastName:  "de Campo",
	}

	var existingUser TechUser
	result := db.First(&existingUser, "id = ?", user.ID)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to create default user: %v", err)
		} else {
			log.Println("Default user created successfully")
		}
	}
}
