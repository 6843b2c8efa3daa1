package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/invwatch/internal/domain"
)

const txnDatetimeLayout = "2006-01-02 15:04:05"

// Paths locates the flat input files.
type Paths struct {
	SKUMaster string
	Demand    string
	Inventory string
	Txn       string
}

// Tables holds the loaded input tables. Treated as read-only for the
// duration of any computation.
type Tables struct {
	SKUMaster []domain.SKUMaster
	Demand    []domain.DemandRecord
	Inventory []domain.InventorySnapshot
	Txns      []domain.InventoryTxn
}

// Load reads the three required CSV inputs plus the optional
// transaction log. A missing required file fails with
// *domain.MissingFileError; a missing transaction file yields an
// empty table. Malformed numeric fields are coerced to zero and
// counted, which is a deliberate policy rather than silent data loss.
func Load(paths Paths) (*Tables, error) {
	tables := &Tables{}

	if err := readCSV(paths.SKUMaster, "sku_master", func(row rowReader) error {
		tables.SKUMaster = append(tables.SKUMaster, domain.SKUMaster{
			SKU:          row.str("sku"),
			SKUName:      row.str("sku_name"),
			Category:     row.str("category"),
			UOM:          row.str("uom"),
			ReorderPoint: row.num("reorder_point"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(paths.Demand, "demand_daily", func(row rowReader) error {
		date, err := row.date("date")
		if err != nil {
			return err
		}
		tables.Demand = append(tables.Demand, domain.DemandRecord{
			Date:      date,
			SKU:       row.str("sku"),
			Plant:     row.str("plant"),
			Category:  row.str("category"),
			DemandQty: row.num("demand_qty"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(paths.Inventory, "inventory_daily", func(row rowReader) error {
		date, err := row.date("date")
		if err != nil {
			return err
		}
		tables.Inventory = append(tables.Inventory, domain.InventorySnapshot{
			Date:      date,
			SKU:       row.str("sku"),
			Warehouse: row.str("warehouse"),
			OnhandQty: row.num("onhand_qty"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	err := readCSV(paths.Txn, "inventory_txn", func(row rowReader) error {
		date, err := row.date("date")
		if err != nil {
			return err
		}
		txnAt, err := time.Parse(txnDatetimeLayout, row.str("txn_datetime"))
		if err != nil {
			txnAt = date
		}
		tables.Txns = append(tables.Txns, domain.InventoryTxn{
			TxnDatetime: txnAt,
			Date:        date,
			SKU:         row.str("sku"),
			Warehouse:   row.str("warehouse"),
			TxnType:     strings.ToUpper(row.str("txn_type")),
			Qty:         row.num("qty"),
			RefID:       row.str("ref_id"),
			ReasonCode:  row.str("reason_code"),
		})
		return nil
	})
	if err != nil {
		var missing *domain.MissingFileError
		if !errors.As(err, &missing) {
			return nil, err
		}
		// Txn log is optional collaborator data; absence means empty.
		log.Info().Str("path", paths.Txn).Msg("inventory txn file absent, using empty table")
	}

	log.Info().
		Int("skus", len(tables.SKUMaster)).
		Int("demand_rows", len(tables.Demand)).
		Int("inventory_rows", len(tables.Inventory)).
		Int("txn_rows", len(tables.Txns)).
		Msg("input tables loaded")

	return tables, nil
}

// rowReader resolves record fields by header name and applies the
// zero-coercion policy for numeric fields.
type rowReader struct {
	file    string
	colMap  map[string]int
	record  []string
	coerced *int
	lineNum int
}

func (r rowReader) str(col string) string {
	idx, ok := r.colMap[col]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r rowReader) num(col string) float64 {
	raw := r.str(col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*r.coerced++
		log.Warn().Str("file", r.file).Int("line", r.lineNum).Str("column", col).Str("value", raw).Msg("malformed numeric field coerced to zero")
		return 0
	}
	return v
}

func (r rowReader) date(col string) (time.Time, error) {
	raw := r.str(col)
	d, err := time.Parse(domain.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s line %d: invalid date %q in column %s: %w", r.file, r.lineNum, raw, col, err)
	}
	return d, nil
}

func readCSV(path, name string, each func(rowReader) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.MissingFileError{Name: name, Path: path, Err: err}
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read %s header: %w", name, err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}

	var coerced int
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s record: %w", name, err)
		}
		line++

		row := rowReader{file: name, colMap: colMap, record: record, coerced: &coerced, lineNum: line}
		if err := each(row); err != nil {
			return err
		}
	}

	if coerced > 0 {
		log.Warn().Str("file", name).Int("fields", coerced).Msg("numeric fields coerced to zero")
	}

	return nil
}
