package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/service"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

func parseFilter(c *gin.Context) domain.Filter {
	return domain.Filter{
		Category:  strings.TrimSpace(c.Query("category")),
		Warehouse: strings.TrimSpace(c.Query("warehouse")),
		SKU:       strings.TrimSpace(c.Query("sku")),
	}
}

// parsePolicy overlays query params on the default policy. Bad values
// are ignored rather than rejected; Normalize repairs the rest.
func parsePolicy(c *gin.Context) domain.Policy {
	policy := domain.DefaultPolicy()

	intParam := func(param string, dst *int) {
		if v, err := strconv.Atoi(strings.TrimSpace(c.Query(param))); err == nil {
			*dst = v
		}
	}
	floatParam := func(param string, dst *float64) {
		if v, err := strconv.ParseFloat(strings.TrimSpace(c.Query(param)), 64); err == nil {
			*dst = v
		}
	}

	intParam("dos_basis_days", &policy.DOSBasisDays)
	floatParam("shortage_days", &policy.ShortageDays)
	floatParam("overstock_days", &policy.OverstockDays)
	intParam("lead_time_days", &policy.LeadTimeDays)
	intParam("target_cover_days", &policy.TargetCoverDays)
	intParam("safety_stock_days", &policy.SafetyStockDays)
	intParam("moq", &policy.MOQ)

	return policy.Normalize()
}

// resolveDate picks the reference date: the explicit date param when
// present, otherwise the newest snapshot date in the store.
func (h *MetricsHandler) resolveDate(c *gin.Context) (time.Time, bool) {
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := time.Parse(domain.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return time.Time{}, false
		}
		return date, true
	}

	dates, err := h.service.GetAvailableDates(c.Request.Context(), 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve reference date", "details": err.Error()})
		return time.Time{}, false
	}
	if len(dates) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no inventory snapshots loaded"})
		return time.Time{}, false
	}
	return dates[0], true
}

func respondNoSnapshot(c *gin.Context, date time.Time) {
	c.JSON(http.StatusNotFound, gin.H{"error": "no inventory snapshot for date", "date": date.Format(domain.DateOnly)})
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	var risk domain.RiskLevel
	if raw := strings.TrimSpace(c.Query("risk")); raw != "" {
		risk, ok = domain.ParseRiskLevel(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown risk level", "risk": raw})
			return
		}
	}

	metrics, err := h.service.GetMetrics(c.Request.Context(), date, parseFilter(c), parsePolicy(c))
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			respondNoSnapshot(c, date)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics", "details": err.Error()})
		return
	}

	if risk != "" {
		kept := make([]domain.SKUMetrics, 0, len(metrics))
		for _, m := range metrics {
			if m.RiskLevel == risk {
				kept = append(kept, m)
			}
		}
		metrics = kept
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    date.Format(domain.DateOnly),
		"metrics": metrics,
		"total":   len(metrics),
	})
}

func (h *MetricsHandler) GetKPI(c *gin.Context) {
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	kpi, err := h.service.GetKPI(c.Request.Context(), date, parseFilter(c), parsePolicy(c))
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			respondNoSnapshot(c, date)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute kpi", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kpi)
}

func (h *MetricsHandler) GetActions(c *gin.Context) {
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	actions, err := h.service.GetActions(c.Request.Context(), date, parseFilter(c), parsePolicy(c))
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			respondNoSnapshot(c, date)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute actions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    date.Format(domain.DateOnly),
		"actions": actions,
		"total":   len(actions),
	})
}

func (h *MetricsHandler) GetTransactions(c *gin.Context) {
	q := domain.TxnQuery{Filter: parseFilter(c)}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse(domain.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		q.From = from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse(domain.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		q.To = to
	}

	if raw := strings.TrimSpace(c.Query("txn_types")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t := strings.ToUpper(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			if !domain.ValidTxnType(t) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown txn type", "txn_type": t})
				return
			}
			q.TxnTypes = append(q.TxnTypes, t)
		}
	}

	txns, err := h.service.GetTransactions(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transactions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"total":        len(txns),
	})
}

func (h *MetricsHandler) GetDailyMovement(c *gin.Context) {
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 {
		days = 30
	}
	from := date.AddDate(0, 0, -days+1)

	movement, err := h.service.GetDailyMovement(c.Request.Context(), parseFilter(c), from, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch movement", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     date.Format(domain.DateOnly),
		"days":     days,
		"movement": movement,
	})
}

func (h *MetricsHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.service.GetFilterOptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch filter options", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, options)
}

func (h *MetricsHandler) GetAvailableDates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if limit <= 0 {
		limit = 30
	}

	dates, err := h.service.GetAvailableDates(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch available dates", "details": err.Error()})
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(domain.DateOnly))
	}
	c.JSON(http.StatusOK, gin.H{"dates": out})
}
