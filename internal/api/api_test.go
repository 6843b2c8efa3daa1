package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invwatch/internal/cache"
	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/loader"
	"github.com/andresuchdata/invwatch/internal/repository/sqlite"
	"github.com/andresuchdata/invwatch/internal/service"
)

var ref = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tables := &loader.Tables{
		SKUMaster: []domain.SKUMaster{
			{SKU: "SKU-001", SKUName: "Part 001", Category: "Motor", UOM: "EA", ReorderPoint: 100},
		},
	}
	for i := 29; i >= 0; i-- {
		tables.Demand = append(tables.Demand, domain.DemandRecord{
			Date: ref.AddDate(0, 0, -i), SKU: "SKU-001", Plant: "PLANT-A", Category: "Motor", DemandQty: 5,
		})
	}
	tables.Inventory = []domain.InventorySnapshot{
		{Date: ref, SKU: "SKU-001", Warehouse: "WH-1", OnhandQty: 50},
	}

	db, err := sqlite.NewDB()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Ingest(context.Background(), tables); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	repo := sqlite.NewInventoryRepository(db)
	return NewRouter(&Services{
		MetricsService:  service.NewMetricsService(repo, cache.NewNoopMetricsCache()),
		ForecastService: service.NewForecastService(repo),
	}, nil)
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("parse response from %s: %v", path, err)
		}
	}
	return w, body
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w, body := doGet(t, router, "/health")
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", w.Code, body)
	}
}

func TestGetMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/inventory/metrics?date=2024-01-15")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["date"] != "2024-01-15" {
		t.Errorf("date = %v", body["date"])
	}
	metrics, ok := body["metrics"].([]interface{})
	if !ok || len(metrics) != 1 {
		t.Fatalf("metrics = %v", body["metrics"])
	}
	row := metrics[0].(map[string]interface{})
	if row["coverage_days"] != 10.0 {
		t.Errorf("coverage_days = %v, want 10", row["coverage_days"])
	}
	if row["risk_level"] != "Medium" || row["bucket"] != "Shortage" {
		t.Errorf("classification = %v / %v", row["risk_level"], row["bucket"])
	}
}

// With no date param the newest snapshot is used.
func TestGetMetricsDefaultDate(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/inventory/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["date"] != "2024-01-15" {
		t.Errorf("date = %v, want newest snapshot", body["date"])
	}
}

// The risk param narrows the table to one tier, case-insensitively;
// unknown labels are rejected.
func TestGetMetricsRiskFilter(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/inventory/metrics?date=2024-01-15&risk=medium")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["total"] != 1.0 {
		t.Errorf("total = %v, want 1 (the fixture SKU is Medium)", body["total"])
	}

	w, body = doGet(t, router, "/api/v1/inventory/metrics?date=2024-01-15&risk=Critical")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["total"] != 0.0 {
		t.Errorf("total = %v, want 0", body["total"])
	}

	w, _ = doGet(t, router, "/api/v1/inventory/metrics?date=2024-01-15&risk=severe")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown risk status = %d, want 400", w.Code)
	}
}

func TestGetMetricsBadRequests(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doGet(t, router, "/api/v1/inventory/metrics?date=15-01-2024")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed date status = %d, want 400", w.Code)
	}

	w, _ = doGet(t, router, "/api/v1/inventory/metrics?date=2030-01-01")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing snapshot status = %d, want 404", w.Code)
	}
}

func TestGetKPIEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/inventory/kpi?date=2024-01-15")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["total_onhand"] != 50.0 {
		t.Errorf("total_onhand = %v, want 50", body["total_onhand"])
	}
	if body["demand_7d"] != 35.0 {
		t.Errorf("demand_7d = %v, want 35", body["demand_7d"])
	}
}

func TestGetForecastEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/inventory/forecast?date=2024-01-15")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	curve, ok := body["curve"].([]interface{})
	if !ok || len(curve) != 14 {
		t.Errorf("curve length = %d, want 14", len(curve))
	}
	backtest, ok := body["backtest"].(map[string]interface{})
	if !ok || backtest["confidence"] != "High" {
		t.Errorf("backtest = %v", body["backtest"])
	}
}

func TestGetDatesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/inventory/dates")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	dates, ok := body["dates"].([]interface{})
	if !ok || len(dates) != 1 || dates[0] != "2024-01-15" {
		t.Errorf("dates = %v", body["dates"])
	}
}

func TestGetTransactionsRejectsUnknownType(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doGet(t, router, "/api/v1/inventory/transactions?txn_types=SALE")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
