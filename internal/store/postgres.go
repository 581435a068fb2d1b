package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshot is one whole collection document stored as a single row, so the
// replace-whole write contract survives the move into a real database.
type snapshot struct {
	Name string `gorm:"primaryKey;size:64"`
	Body []byte `gorm:"type:jsonb"`
}

func (snapshot) TableName() string { return "snapshots" }

// PostgresStore keeps each collection as one jsonb row. Selected with
// DATA_BACKEND=postgres; the default file backend needs no database.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&snapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots table: %w", err)
	}
	log.Println("snapshot store: postgres backend ready")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(collection string, out any) error {
	var row snapshot
	err := s.db.First(&row, "name = ?", collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // empty snapshot
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", collection, err)
	}
	if err := json.Unmarshal(row.Body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, collection, err)
	}
	return nil
}

func (s *PostgresStore) Save(collection string, in any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body"}),
	}).Create(&snapshot{Name: collection, Body: body}).Error
	if err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}
