package server_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/server"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/testutils"
	"github.com/gooneraki/risk-worker/pkg/config"
	"github.com/gooneraki/risk-worker/pkg/models"
)

const testSecret = "shhh"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "local"
	cfg.Worker.Secret = testSecret
	return cfg
}

func doRequest(t *testing.T, s *server.Server, method, path string, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if secret != "" {
		req.Header.Set("X-Worker-Secret", secret)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestServer_Healthz(t *testing.T) {
	s := server.New(testConfig(), zap.NewNop(), &testutils.MockPriceReader{}, nil, &testutils.MockHandler{})

	w := doRequest(t, s, http.MethodGet, "/healthz", "")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestServer_LatestPrice_RequiresSecret(t *testing.T) {
	s := server.New(testConfig(), zap.NewNop(), &testutils.MockPriceReader{}, nil, &testutils.MockHandler{})

	if w := doRequest(t, s, http.MethodGet, "/latest-price/MSFT", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing secret: status = %d, want 401", w.Code)
	}
	if w := doRequest(t, s, http.MethodGet, "/latest-price/MSFT", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: status = %d, want 401", w.Code)
	}
}

func TestServer_LatestPrice_FromStore(t *testing.T) {
	reader := &testutils.MockPriceReader{Observations: map[string]*models.PriceObservation{
		"MSFT": {
			Ticker:     "MSFT",
			Price:      decimal.NewFromFloat(410.50),
			ObservedAt: time.Now().UTC(),
		},
	}}
	s := server.New(testConfig(), zap.NewNop(), reader, nil, &testutils.MockHandler{})

	w := doRequest(t, s, http.MethodGet, "/latest-price/msft", testSecret)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	var obs models.PriceObservation
	if err := json.Unmarshal(w.Body.Bytes(), &obs); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if obs.Ticker != "MSFT" {
		t.Errorf("ticker = %s, want MSFT (normalized from path)", obs.Ticker)
	}
}

func TestServer_LatestPrice_NotFound(t *testing.T) {
	s := server.New(testConfig(), zap.NewNop(), &testutils.MockPriceReader{}, nil, &testutils.MockHandler{})

	w := doRequest(t, s, http.MethodGet, "/latest-price/ZZZZ", testSecret)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestServer_LatestPrice_CacheHitSkipsStore(t *testing.T) {
	reader := &testutils.MockPriceReader{Err: errors.New("store should not be touched")}
	mockCache := testutils.NewMockCache()
	mockCache.Entries["MSFT"] = decimal.NewFromFloat(410.50)

	s := server.New(testConfig(), zap.NewNop(), reader, mockCache, &testutils.MockHandler{})

	w := doRequest(t, s, http.MethodGet, "/latest-price/MSFT", testSecret)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["source"] != "cache" {
		t.Errorf("source = %v, want cache", body["source"])
	}
}

func TestServer_LatestPrice_CacheMissRepopulates(t *testing.T) {
	reader := &testutils.MockPriceReader{Observations: map[string]*models.PriceObservation{
		"MSFT": {Ticker: "MSFT", Price: decimal.NewFromFloat(410.50)},
	}}
	mockCache := testutils.NewMockCache()

	s := server.New(testConfig(), zap.NewNop(), reader, mockCache, &testutils.MockHandler{})

	w := doRequest(t, s, http.MethodGet, "/latest-price/MSFT", testSecret)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, ok := mockCache.Entries["MSFT"]; !ok {
		t.Error("a store hit should repopulate the cache")
	}
}

func TestServer_TriggerUpdate(t *testing.T) {
	handler := &testutils.MockHandler{Outcome: models.OutcomeSuccess}
	s := server.New(testConfig(), zap.NewNop(), &testutils.MockPriceReader{}, nil, handler)

	w := doRequest(t, s, http.MethodPost, "/trigger-update/msft", testSecret)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	events := handler.Handled()
	if len(events) != 1 {
		t.Fatalf("processed events = %d, want 1", len(events))
	}
	if events[0].Ticker != "MSFT" || events[0].Action != models.ActionAdd {
		t.Errorf("event = %+v, want synthesized MSFT add-event", events[0])
	}
}

func TestServer_TriggerUpdate_FetchFailure(t *testing.T) {
	handler := &testutils.MockHandler{Outcome: models.OutcomeFetchFailed}
	s := server.New(testConfig(), zap.NewNop(), &testutils.MockPriceReader{}, nil, handler)

	w := doRequest(t, s, http.MethodPost, "/trigger-update/ZZZZ", testSecret)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["outcome"] != "fetch_failed" {
		t.Errorf("outcome = %v, want fetch_failed", body["outcome"])
	}
}

func TestServer_TriggerUpdate_RequiresSecret(t *testing.T) {
	handler := &testutils.MockHandler{}
	s := server.New(testConfig(), zap.NewNop(), &testutils.MockPriceReader{}, nil, handler)

	w := doRequest(t, s, http.MethodPost, "/trigger-update/MSFT", "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if len(handler.Handled()) != 0 {
		t.Error("unauthorized request must not trigger processing")
	}
}
