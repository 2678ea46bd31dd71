package repository

import (
	"fmt"

	"factoring-backend/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return NewWithDB(db)
}

// NewWithDB оборачивает уже открытое соединение (используется в тестах)
func NewWithDB(db *gorm.DB) (*Repository, error) {
	// Автоматическая миграция всех таблиц
	err := db.AutoMigrate(
		&ds.Company{},
		&ds.User{},
		&ds.Contract{},
		&ds.FactoringAgreement{},
		&ds.Registry{},
		&ds.Supply{},
		&ds.Discount{},
		&ds.DiscountSettings{},
		&ds.FreeDay{},
		&ds.UnformalizedDocument{},
		&ds.UnformalizedDocumentReceiver{},
		&ds.Signature{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}
