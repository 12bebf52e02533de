package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Actions carried by a ticker event. The pipeline fetches on add/update;
// delete is acknowledged but never removes historical rows.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Channel names shared by the worker and the publisher tool.
const (
	TickerUpdatesChannel      = "ticker_updates"
	TickerPriceUpdatesChannel = "ticker_price_updates"
)

// TickerEvent is one decoded instruction from the message channel.
// It is ephemeral: consumed once by the processor, never persisted.
type TickerEvent struct {
	Ticker    string  `json:"ticker"`
	Action    string  `json:"action"`
	UserID    int64   `json:"user_id,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// PriceObservation is one append-only price reading for a ticker.
type PriceObservation struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	Ticker     string              `gorm:"index;not null" json:"ticker"`
	Price      decimal.Decimal     `gorm:"type:decimal(20,6);not null" json:"price"`
	Volume     decimal.NullDecimal `gorm:"type:decimal(24,2)" json:"volume"`
	MarketCap  decimal.NullDecimal `gorm:"type:decimal(24,2)" json:"market_cap"`
	ObservedAt time.Time           `gorm:"index" json:"observed_at"`
	RecordedAt time.Time           `json:"recorded_at"`
}

func (PriceObservation) TableName() string { return "ticker_prices" }

// TickerMetadata holds descriptive company info, one row per ticker.
// Fields are nullable because the provider may omit any of them.
type TickerMetadata struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Ticker      string    `gorm:"uniqueIndex;not null" json:"ticker"`
	CompanyName *string   `json:"company_name"`
	Sector      *string   `json:"sector"`
	Industry    *string   `json:"industry"`
	LastUpdated time.Time `json:"last_updated"`
}

func (TickerMetadata) TableName() string { return "ticker_metadata" }

// ProviderInfo is the descriptive slice of a provider quote bundle.
// Nil fields mean the provider did not return that value.
type ProviderInfo struct {
	CompanyName *string
	Sector      *string
	Industry    *string
}

// FetchResult is the transient outcome of one provider call. The failure
// case is data, not an error: callers branch on Success.
type FetchResult struct {
	Ticker       string
	Price        decimal.Decimal
	Volume       decimal.NullDecimal
	MarketCap    decimal.NullDecimal
	Info         ProviderInfo
	Success      bool
	ErrorMessage string
}
