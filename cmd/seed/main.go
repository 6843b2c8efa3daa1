package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/pkg/logger"
)

var (
	plants      = []string{"PLANT-A", "PLANT-B"}
	warehouses  = []string{"WH-1", "WH-2"}
	categories  = []string{"Motor", "Brake", "Steering", "Sensor"}
	reasonCodes = map[string]string{
		domain.TxnIn:     "RCV",
		domain.TxnOut:    "SALE",
		domain.TxnAdjust: "ADJ",
		domain.TxnReturn: "RTV",
		domain.TxnScrap:  "SCRAP",
	}
)

func main() {
	app := &cli.App{
		Name:  "seed",
		Usage: "Generate sample input files for the inventory monitor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory for the generated CSVs",
				Value: "./data",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Number of daily snapshots to generate",
				Value: 90,
			},
			&cli.IntFlag{
				Name:  "skus",
				Usage: "Number of SKUs to generate",
				Value: 30,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed, for reproducible output",
				Value: 42,
			},
		},
		Action: runSeed,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

type generator struct {
	rng  *rand.Rand
	out  string
	days int
	skus []string
	end  time.Time
}

func runSeed(c *cli.Context) error {
	out := c.String("out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	nSKUs := c.Int("skus")
	skus := make([]string, nSKUs)
	for i := range skus {
		skus[i] = fmt.Sprintf("SKU-%03d", i+1)
	}

	g := &generator{
		rng:  rand.New(rand.NewSource(c.Int64("seed"))),
		out:  out,
		days: c.Int("days"),
		skus: skus,
		end:  time.Now().Truncate(24 * time.Hour),
	}

	if err := g.writeSKUMaster(); err != nil {
		return err
	}
	demand, err := g.writeDemand()
	if err != nil {
		return err
	}
	inventory, err := g.writeInventory()
	if err != nil {
		return err
	}
	if err := g.writeTxns(inventory, demand); err != nil {
		return err
	}

	logger.Log.Info().
		Str("dir", out).
		Int("skus", nSKUs).
		Int("days", g.days).
		Msg("sample data generated")
	return nil
}

func (g *generator) date(offset int) time.Time {
	return g.end.AddDate(0, 0, -(g.days - 1 - offset))
}

func (g *generator) writeSKUMaster() error {
	rows := [][]string{{"sku", "sku_name", "category", "uom", "reorder_point"}}
	for i, sku := range g.skus {
		rows = append(rows, []string{
			sku,
			fmt.Sprintf("Part %03d", i+1),
			categories[g.rng.Intn(len(categories))],
			"EA",
			strconv.Itoa(80 + g.rng.Intn(120)),
		})
	}
	return g.writeFile("sku_master.csv", rows)
}

type demandCell struct {
	date time.Time
	sku  string
	qty  int
}

// writeDemand produces base demand per SKU with a mild monthly
// seasonality wave and gaussian noise, floored at zero.
func (g *generator) writeDemand() ([]demandCell, error) {
	rows := [][]string{{"date", "sku", "plant", "category", "demand_qty"}}
	var cells []demandCell

	for d := 0; d < g.days; d++ {
		day := g.date(d)
		for _, sku := range g.skus {
			base := float64(5 + g.rng.Intn(35))
			season := 1 + 0.2*math.Sin(float64(day.YearDay()%30)/30*2*math.Pi)
			qty := int(base*season + g.rng.NormFloat64()*3)
			if qty < 0 {
				qty = 0
			}

			rows = append(rows, []string{
				day.Format(domain.DateOnly),
				sku,
				plants[g.rng.Intn(len(plants))],
				categories[g.rng.Intn(len(categories))],
				strconv.Itoa(qty),
			})
			cells = append(cells, demandCell{date: day, sku: sku, qty: qty})
		}
	}

	return cells, g.writeFile("demand_daily.csv", rows)
}

type invCell struct {
	date      time.Time
	sku       string
	warehouse string
	qty       int
}

// writeInventory walks each SKU's stock level randomly day over day,
// floored at zero.
func (g *generator) writeInventory() ([]invCell, error) {
	rows := [][]string{{"date", "sku", "warehouse", "onhand_qty"}}
	var cells []invCell

	stock := make(map[string]int, len(g.skus))
	for _, sku := range g.skus {
		stock[sku] = 200 + g.rng.Intn(600)
	}

	for d := 0; d < g.days; d++ {
		day := g.date(d)
		for _, sku := range g.skus {
			s := stock[sku] - g.rng.Intn(35) + g.rng.Intn(45)
			if s < 0 {
				s = 0
			}
			stock[sku] = s

			wh := warehouses[g.rng.Intn(len(warehouses))]
			rows = append(rows, []string{
				day.Format(domain.DateOnly),
				sku,
				wh,
				strconv.Itoa(s),
			})
			cells = append(cells, invCell{date: day, sku: sku, warehouse: wh, qty: s})
		}
	}

	return cells, g.writeFile("inventory_daily.csv", rows)
}

// writeTxns derives an audit trail consistent with the snapshots:
// positive day-over-day deltas become IN receipts, negative deltas and
// demand become OUT issues, plus a sprinkling of adjustments.
func (g *generator) writeTxns(inventory []invCell, demand []demandCell) error {
	rows := [][]string{{"txn_datetime", "date", "sku", "warehouse", "txn_type", "qty", "ref_id", "reason_code"}}
	refID := 10000

	cutoff := g.end.AddDate(0, 0, -59)

	appendTxn := func(day time.Time, sku, wh, txnType string, qty int) {
		at := day.Add(time.Duration(8+g.rng.Intn(10))*time.Hour + time.Duration(g.rng.Intn(60))*time.Minute)
		rows = append(rows, []string{
			at.Format("2006-01-02 15:04:05"),
			day.Format(domain.DateOnly),
			sku,
			wh,
			txnType,
			strconv.Itoa(qty),
			fmt.Sprintf("REF-%d", refID),
			reasonCodes[txnType],
		})
		refID++
	}

	prev := make(map[string]int)
	for _, cell := range inventory {
		key := cell.sku + "|" + cell.warehouse
		last, seen := prev[key]
		prev[key] = cell.qty
		if !seen || cell.date.Before(cutoff) {
			continue
		}

		delta := cell.qty - last
		if delta > 0 {
			appendTxn(cell.date, cell.sku, cell.warehouse, domain.TxnIn, delta)
		} else if delta < 0 {
			appendTxn(cell.date, cell.sku, cell.warehouse, domain.TxnOut, delta)
		}
	}

	for _, cell := range demand {
		if cell.qty <= 0 || cell.date.Before(cutoff) {
			continue
		}
		// sample roughly a third of demand days to keep the file small
		if g.rng.Intn(3) != 0 {
			continue
		}
		wh := warehouses[g.rng.Intn(len(warehouses))]
		appendTxn(cell.date, cell.sku, wh, domain.TxnOut, -cell.qty)
	}

	for i := 0; i < 80; i++ {
		day := cutoff.AddDate(0, 0, g.rng.Intn(60))
		sku := g.skus[g.rng.Intn(len(g.skus))]
		wh := warehouses[g.rng.Intn(len(warehouses))]
		qty := 1 + g.rng.Intn(14)

		txnType := [...]string{domain.TxnAdjust, domain.TxnReturn, domain.TxnScrap}[g.rng.Intn(3)]
		switch txnType {
		case domain.TxnAdjust:
			if g.rng.Intn(2) == 0 {
				qty = -qty
			}
		case domain.TxnScrap:
			qty = -qty
		}
		appendTxn(day, sku, wh, txnType, qty)
	}

	return g.writeFile("inventory_txn.csv", rows)
}

func (g *generator) writeFile(name string, rows [][]string) error {
	path := filepath.Join(g.out, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Log.Info().Str("file", name).Int("rows", len(rows)-1).Msg("written")
	return nil
}
