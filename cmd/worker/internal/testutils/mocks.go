package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// MockFetcher returns canned results per ticker, failing by default for
// tickers it has no script for.
type MockFetcher struct {
	Results map[string]models.FetchResult
	Calls   []string
	Mu      sync.Mutex
}

func (m *MockFetcher) Fetch(ctx context.Context, ticker string) models.FetchResult {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls = append(m.Calls, ticker)
	if r, ok := m.Results[ticker]; ok {
		return r
	}
	return models.FetchResult{Ticker: ticker, Success: false, ErrorMessage: "no data available"}
}

func (m *MockFetcher) CallCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Calls)
}

// MockGateway records writes and can be scripted to fail either step.
type MockGateway struct {
	PriceWrites    []models.FetchResult
	MetadataWrites []string
	FailPrice      bool
	FailMetadata   bool
	Mu             sync.Mutex
}

func (m *MockGateway) RecordPrice(ctx context.Context, result models.FetchResult) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.FailPrice {
		return errors.New("price write failed")
	}
	m.PriceWrites = append(m.PriceWrites, result)
	return nil
}

func (m *MockGateway) UpsertMetadata(ctx context.Context, ticker string, info models.ProviderInfo) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.FailMetadata {
		return errors.New("metadata write failed")
	}
	m.MetadataWrites = append(m.MetadataWrites, ticker)
	return nil
}

// MockCache records Set calls.
type MockCache struct {
	Entries map[string]decimal.Decimal
	Mu      sync.Mutex
}

func NewMockCache() *MockCache {
	return &MockCache{Entries: make(map[string]decimal.Decimal)}
}

func (m *MockCache) Set(ctx context.Context, ticker string, price decimal.Decimal) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Entries[ticker] = price
}

func (m *MockCache) Get(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	p, ok := m.Entries[ticker]
	return p, ok
}

// MockPriceReader serves canned latest-price rows.
type MockPriceReader struct {
	Observations map[string]*models.PriceObservation
	Err          error
}

func (m *MockPriceReader) LatestPrice(ctx context.Context, ticker string) (*models.PriceObservation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Observations[ticker], nil
}

// MockPublisher records published price updates.
type MockPublisher struct {
	Published  []string
	ShouldFail bool
	Mu         sync.Mutex
}

func (m *MockPublisher) PublishPriceUpdate(ctx context.Context, ticker string, price decimal.Decimal, at time.Time) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.ShouldFail {
		return errors.New("publish failed")
	}
	m.Published = append(m.Published, ticker)
	return nil
}
