package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// ErrFailedFetch is returned when a caller tries to record a FetchResult
// whose fetch did not succeed. Only successful fetches become rows.
var ErrFailedFetch = errors.New("refusing to record a failed fetch result")

// Store is the persistence gateway for price observations and ticker
// metadata. Each operation is its own transaction; a failed price insert
// never blocks a metadata upsert and vice versa.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres. The worker cannot run without durable storage,
// so callers treat an error here as fatal.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New migrates the schema and returns a ready Store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.PriceObservation{}, &models.TickerMetadata{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordPrice appends one observation for a successful fetch. Rows are
// never updated after insert; observed_at is the moment of insertion since
// the provider supplies no trade timestamp.
func (s *Store) RecordPrice(ctx context.Context, result models.FetchResult) error {
	if !result.Success {
		return ErrFailedFetch
	}

	now := time.Now().UTC()
	observation := models.PriceObservation{
		Ticker:     result.Ticker,
		Price:      result.Price,
		Volume:     result.Volume,
		MarketCap:  result.MarketCap,
		ObservedAt: now,
		RecordedAt: now,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&observation).Error
	})
}

// UpsertMetadata creates the metadata row on first sighting of a ticker and
// afterwards overwrites only the fields the provider actually returned,
// always bumping last_updated. Concurrent upserts for the same ticker
// degrade to last-writer-wins, never a torn row.
func (s *Store) UpsertMetadata(ctx context.Context, ticker string, info models.ProviderInfo) error {
	now := time.Now().UTC()

	meta := models.TickerMetadata{
		Ticker:      ticker,
		CompanyName: info.CompanyName,
		Sector:      info.Sector,
		Industry:    info.Industry,
		LastUpdated: now,
	}

	// Only the fields the provider returned overwrite an existing row.
	assignments := map[string]interface{}{"last_updated": now}
	if info.CompanyName != nil {
		assignments["company_name"] = *info.CompanyName
	}
	if info.Sector != nil {
		assignments["sector"] = *info.Sector
	}
	if info.Industry != nil {
		assignments["industry"] = *info.Industry
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&meta).Error
	})
}

// LatestPrice returns the observation with the greatest observed_at for the
// ticker, or (nil, nil) when the ticker has no rows.
func (s *Store) LatestPrice(ctx context.Context, ticker string) (*models.PriceObservation, error) {
	var observation models.PriceObservation
	err := s.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("observed_at DESC").
		First(&observation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &observation, nil
}

// Metadata returns the stored metadata row for a ticker, or (nil, nil).
func (s *Store) Metadata(ctx context.Context, ticker string) (*models.TickerMetadata, error) {
	var meta models.TickerMetadata
	err := s.db.WithContext(ctx).Where("ticker = ?", ticker).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
