package handlers

import (
	"finagent/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard *service.Dashboard
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.Dashboard, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// Summary godoc
// @Summary Spending summary
// @Description Totals, date range, and per-category breakdown over all transactions.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardSummary
// @Router /api/v1/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	return c.JSON(h.dashboard.Summary(c.Context()))
}

// Timeseries godoc
// @Summary Monthly spending series
// @Description Per-month totals in ascending month order, for charting.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.TimeseriesResponse
// @Router /api/v1/dashboard/timeseries [get]
func (h *DashboardHandler) Timeseries(c *fiber.Ctx) error {
	return c.JSON(h.dashboard.Timeseries(c.Context()))
}

// Comparison godoc
// @Summary Month-over-month comparison
// @Description Spending change between the two most recent months in the data.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.MonthComparison
// @Router /api/v1/dashboard/comparison [get]
func (h *DashboardHandler) Comparison(c *fiber.Ctx) error {
	return c.JSON(h.dashboard.Comparison(c.Context()))
}
