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

type ForecastHandler struct {
	service *service.ForecastService
	metrics *service.MetricsService
}

func NewForecastHandler(forecastSvc *service.ForecastService, metricsSvc *service.MetricsService) *ForecastHandler {
	return &ForecastHandler{service: forecastSvc, metrics: metricsSvc}
}

func parseForecastConfig(c *gin.Context) domain.ForecastConfig {
	cfg := domain.DefaultForecastConfig()

	if model := strings.TrimSpace(c.Query("model")); model != "" {
		cfg.Model = strings.ToLower(model)
	}
	intParam := func(param string, dst *int) {
		if v, err := strconv.Atoi(strings.TrimSpace(c.Query(param))); err == nil {
			*dst = v
		}
	}
	intParam("window_days", &cfg.WindowDays)
	intParam("horizon_days", &cfg.HorizonDays)
	intParam("lookback_days", &cfg.LookbackDays)
	intParam("backtest_days", &cfg.BacktestDays)

	return cfg.Normalize()
}

func (h *ForecastHandler) resolveDate(c *gin.Context) (time.Time, bool) {
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := time.Parse(domain.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return time.Time{}, false
		}
		return date, true
	}

	dates, err := h.metrics.GetAvailableDates(c.Request.Context(), 1)
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

func (h *ForecastHandler) GetForecast(c *gin.Context) {
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	result, err := h.service.GetForecast(c.Request.Context(), date, parseFilter(c), parseForecastConfig(c))
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			respondNoSnapshot(c, date)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute forecast", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     date.Format(domain.DateOnly),
		"config":   result.Config,
		"curve":    result.Curve,
		"metrics":  result.Metrics,
		"backtest": result.Backtest,
	})
}
