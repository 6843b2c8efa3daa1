package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/loader"
	"github.com/andresuchdata/invwatch/internal/repository"
)

var ref = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return ref.AddDate(0, 0, offset)
}

func newTestRepo(t *testing.T, tables *loader.Tables) repository.InventoryRepository {
	t.Helper()

	db, err := NewDB()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Ingest(context.Background(), tables); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return NewInventoryRepository(db)
}

func baseTables() *loader.Tables {
	tables := &loader.Tables{
		SKUMaster: []domain.SKUMaster{
			{SKU: "SKU-001", SKUName: "Part 001", Category: "Motor", UOM: "EA", ReorderPoint: 100},
			{SKU: "SKU-002", SKUName: "Part 002", Category: "Brake", UOM: "EA", ReorderPoint: 80},
		},
	}

	// 20 days of steady demand for SKU-001, none for SKU-002
	for i := 19; i >= 0; i-- {
		tables.Demand = append(tables.Demand, domain.DemandRecord{
			Date: day(-i), SKU: "SKU-001", Plant: "PLANT-A", Category: "Motor", DemandQty: 5,
		})
	}

	// SKU-001 split across two warehouses at the reference date,
	// SKU-002 in one
	tables.Inventory = []domain.InventorySnapshot{
		{Date: ref, SKU: "SKU-001", Warehouse: "WH-1", OnhandQty: 30},
		{Date: ref, SKU: "SKU-001", Warehouse: "WH-2", OnhandQty: 20},
		{Date: ref, SKU: "SKU-002", Warehouse: "WH-1", OnhandQty: 400},
		{Date: day(-1), SKU: "SKU-001", Warehouse: "WH-1", OnhandQty: 60},
	}

	return tables
}

func TestSnapshotExists(t *testing.T) {
	repo := newTestRepo(t, baseTables())
	ctx := context.Background()

	ok, err := repo.SnapshotExists(ctx, ref)
	if err != nil || !ok {
		t.Errorf("SnapshotExists(ref) = %v, %v, want true", ok, err)
	}
	ok, err = repo.SnapshotExists(ctx, day(30))
	if err != nil || ok {
		t.Errorf("SnapshotExists(future) = %v, %v, want false", ok, err)
	}
}

func TestAvailableDatesNewestFirst(t *testing.T) {
	repo := newTestRepo(t, baseTables())

	dates, err := repo.AvailableDates(context.Background(), 10)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("got %d dates, want 2", len(dates))
	}
	if !dates[0].Equal(ref) || !dates[1].Equal(day(-1)) {
		t.Errorf("dates = %v, want [%v %v]", dates, ref, day(-1))
	}
}

func TestSKUAggregates(t *testing.T) {
	repo := newTestRepo(t, baseTables())

	rows, err := repo.SKUAggregates(context.Background(), ref, domain.Filter{}, 14)
	if err != nil {
		t.Fatalf("SKUAggregates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	s1 := rows[0]
	if s1.SKU != "SKU-001" {
		t.Fatalf("rows not ordered by sku: first is %s", s1.SKU)
	}
	// stock summed across warehouses, labelled ALL
	if s1.OnhandQty != 50 {
		t.Errorf("SKU-001 onhand = %v, want 50", s1.OnhandQty)
	}
	if s1.Warehouse != "ALL" {
		t.Errorf("SKU-001 warehouse = %q, want ALL", s1.Warehouse)
	}
	// half-open window (ref-14, ref]: 14 days at 5
	if s1.DemandWindow != 70 {
		t.Errorf("SKU-001 demand window = %v, want 70", s1.DemandWindow)
	}
	// (ref-30, ref]: all 20 demand days
	if s1.Demand30 != 100 {
		t.Errorf("SKU-001 demand 30d = %v, want 100", s1.Demand30)
	}

	s2 := rows[1]
	if s2.Warehouse != "WH-1" {
		t.Errorf("SKU-002 warehouse = %q, want WH-1", s2.Warehouse)
	}
	if s2.OnhandQty != 400 || s2.DemandWindow != 0 {
		t.Errorf("SKU-002 = onhand %v demand %v, want 400, 0", s2.OnhandQty, s2.DemandWindow)
	}
}

// The demand window is half-open: the reference day itself counts, the
// day exactly windowDays back does not.
func TestSKUAggregatesWindowBoundaries(t *testing.T) {
	tables := &loader.Tables{
		SKUMaster: []domain.SKUMaster{{SKU: "SKU-BND", SKUName: "Boundary", Category: "Motor", UOM: "EA"}},
		Demand: []domain.DemandRecord{
			{Date: day(-14), SKU: "SKU-BND", DemandQty: 1000}, // excluded
			{Date: day(-13), SKU: "SKU-BND", DemandQty: 7},    // included
			{Date: ref, SKU: "SKU-BND", DemandQty: 3},         // included
			{Date: day(1), SKU: "SKU-BND", DemandQty: 500},    // excluded
		},
		Inventory: []domain.InventorySnapshot{
			{Date: ref, SKU: "SKU-BND", Warehouse: "WH-1", OnhandQty: 10},
		},
	}
	repo := newTestRepo(t, tables)

	rows, err := repo.SKUAggregates(context.Background(), ref, domain.Filter{}, 14)
	if err != nil {
		t.Fatalf("SKUAggregates: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].DemandWindow != 10 {
		t.Errorf("demand window = %v, want 10 (boundary days excluded)", rows[0].DemandWindow)
	}
}

func TestSKUAggregatesFilters(t *testing.T) {
	repo := newTestRepo(t, baseTables())
	ctx := context.Background()

	rows, err := repo.SKUAggregates(ctx, ref, domain.Filter{Category: "Motor"}, 14)
	if err != nil {
		t.Fatalf("category filter: %v", err)
	}
	if len(rows) != 1 || rows[0].SKU != "SKU-001" {
		t.Errorf("category filter rows = %+v, want only SKU-001", rows)
	}

	rows, err = repo.SKUAggregates(ctx, ref, domain.Filter{SKU: "SKU-002"}, 14)
	if err != nil {
		t.Fatalf("sku filter: %v", err)
	}
	if len(rows) != 1 || rows[0].SKU != "SKU-002" {
		t.Errorf("sku filter rows = %+v, want only SKU-002", rows)
	}

	rows, err = repo.SKUAggregates(ctx, ref, domain.Filter{Warehouse: "WH-2"}, 14)
	if err != nil {
		t.Fatalf("warehouse filter: %v", err)
	}
	if len(rows) != 1 || rows[0].SKU != "SKU-001" {
		t.Errorf("warehouse filter rows = %+v, want only SKU-001", rows)
	}
	if rows[0].OnhandQty != 20 || rows[0].Warehouse != "WH-2" {
		t.Errorf("warehouse-scoped onhand = %v at %q, want 20 at WH-2", rows[0].OnhandQty, rows[0].Warehouse)
	}
}

func TestWindowDemandTotal(t *testing.T) {
	repo := newTestRepo(t, baseTables())

	total, err := repo.WindowDemandTotal(context.Background(), ref, domain.Filter{}, 7)
	if err != nil {
		t.Fatalf("WindowDemandTotal: %v", err)
	}
	if total != 35 {
		t.Errorf("total = %v, want 35 (7 days at 5)", total)
	}
}

func TestDemandHistoryRange(t *testing.T) {
	repo := newTestRepo(t, baseTables())

	records, err := repo.DemandHistory(context.Background(), domain.Filter{}, day(-4), ref)
	if err != nil {
		t.Fatalf("DemandHistory: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5 (inclusive range)", len(records))
	}
	for _, rec := range records {
		if rec.Date.Before(day(-4)) || rec.Date.After(ref) {
			t.Errorf("record date %s outside [from, to]", rec.Date.Format(domain.DateOnly))
		}
	}
}

func TestOnhandBySKU(t *testing.T) {
	repo := newTestRepo(t, baseTables())

	onhand, err := repo.OnhandBySKU(context.Background(), ref, domain.Filter{})
	if err != nil {
		t.Fatalf("OnhandBySKU: %v", err)
	}
	if onhand["SKU-001"] != 50 {
		t.Errorf("SKU-001 onhand = %v, want 50", onhand["SKU-001"])
	}
	if onhand["SKU-002"] != 400 {
		t.Errorf("SKU-002 onhand = %v, want 400", onhand["SKU-002"])
	}
}

func TestFilterOptions(t *testing.T) {
	repo := newTestRepo(t, baseTables())

	opts, err := repo.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions: %v", err)
	}
	if len(opts.Categories) != 2 || opts.Categories[0] != "Brake" {
		t.Errorf("Categories = %v, want [Brake Motor]", opts.Categories)
	}
	if len(opts.Warehouses) != 2 {
		t.Errorf("Warehouses = %v, want two", opts.Warehouses)
	}
	if len(opts.SKUs) != 2 {
		t.Errorf("SKUs = %v, want two", opts.SKUs)
	}
}

func txnTables() *loader.Tables {
	tables := baseTables()
	at := func(offset, hour int) time.Time {
		return day(offset).Add(time.Duration(hour) * time.Hour)
	}
	tables.Txns = []domain.InventoryTxn{
		{TxnDatetime: at(-2, 9), Date: day(-2), SKU: "SKU-001", Warehouse: "WH-1", TxnType: domain.TxnIn, Qty: 40, RefID: "REF-1", ReasonCode: "RCV"},
		{TxnDatetime: at(-2, 14), Date: day(-2), SKU: "SKU-001", Warehouse: "WH-1", TxnType: domain.TxnOut, Qty: -15, RefID: "REF-2", ReasonCode: "SALE"},
		{TxnDatetime: at(-1, 10), Date: day(-1), SKU: "SKU-002", Warehouse: "WH-1", TxnType: domain.TxnAdjust, Qty: -5, RefID: "REF-3", ReasonCode: "ADJ"},
		{TxnDatetime: at(0, 11), Date: ref, SKU: "SKU-001", Warehouse: "WH-2", TxnType: domain.TxnOut, Qty: -10, RefID: "REF-4", ReasonCode: "SALE"},
	}
	return tables
}

func TestTransactions(t *testing.T) {
	repo := newTestRepo(t, txnTables())
	ctx := context.Background()

	txns, err := repo.Transactions(ctx, domain.TxnQuery{From: day(-7), To: ref})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 4 {
		t.Fatalf("got %d txns, want 4", len(txns))
	}
	// newest first
	if txns[0].RefID != "REF-4" {
		t.Errorf("first txn = %s, want REF-4", txns[0].RefID)
	}

	outs, err := repo.Transactions(ctx, domain.TxnQuery{From: day(-7), To: ref, TxnTypes: []string{domain.TxnOut}})
	if err != nil {
		t.Fatalf("Transactions by type: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("got %d OUT txns, want 2", len(outs))
	}
	for _, txn := range outs {
		if txn.TxnType != domain.TxnOut {
			t.Errorf("txn %s type = %s, want OUT", txn.RefID, txn.TxnType)
		}
	}

	scoped, err := repo.Transactions(ctx, domain.TxnQuery{
		Filter: domain.Filter{Warehouse: "WH-2"},
		From:   day(-7), To: ref,
	})
	if err != nil {
		t.Fatalf("Transactions by warehouse: %v", err)
	}
	if len(scoped) != 1 || scoped[0].RefID != "REF-4" {
		t.Errorf("warehouse-scoped txns = %+v, want only REF-4", scoped)
	}
}

func TestDailyMovement(t *testing.T) {
	repo := newTestRepo(t, txnTables())

	movement, err := repo.DailyMovement(context.Background(), domain.Filter{}, day(-7), ref)
	if err != nil {
		t.Fatalf("DailyMovement: %v", err)
	}
	if len(movement) != 3 {
		t.Fatalf("got %d days, want 3", len(movement))
	}

	first := movement[0]
	if !first.Date.Equal(day(-2)) {
		t.Fatalf("first day = %v, want %v", first.Date, day(-2))
	}
	if first.InboundQty != 40 || first.OutboundQty != 15 {
		t.Errorf("day(-2) in/out = %v/%v, want 40/15", first.InboundQty, first.OutboundQty)
	}

	last := movement[2]
	if last.InboundQty != 0 || last.OutboundQty != 10 {
		t.Errorf("ref day in/out = %v/%v, want 0/10", last.InboundQty, last.OutboundQty)
	}
}
