package sqlite

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// buildSKUFilterClause constructs the WHERE fragment restricting
// sku_master rows to the filter set. The warehouse filter is modeled
// as existence of any snapshot row in that warehouse, matching how
// the SKU list narrows when a warehouse is picked. Values are always
// bound as parameters.
func buildSKUFilterClause(filter domain.Filter, alias string) (string, []interface{}) {
	alias = normalizeAlias(alias)

	var (
		clauses []string
		args    []interface{}
	)

	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("%scategory = ?", alias))
		args = append(args, filter.Category)
	}
	if filter.SKU != "" {
		clauses = append(clauses, fmt.Sprintf("%ssku = ?", alias))
		args = append(args, filter.SKU)
	}
	if filter.Warehouse != "" {
		clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM inventory_daily iw WHERE iw.sku = %ssku AND iw.warehouse = ?)", alias))
		args = append(args, filter.Warehouse)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " AND " + strings.Join(clauses, " AND "), args
}

// buildWarehouseClause restricts inventory/txn rows to the selected
// warehouse.
func buildWarehouseClause(filter domain.Filter, alias string) (string, []interface{}) {
	if filter.Warehouse == "" {
		return "", nil
	}
	return fmt.Sprintf(" AND %swarehouse = ?", normalizeAlias(alias)), []interface{}{filter.Warehouse}
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}
