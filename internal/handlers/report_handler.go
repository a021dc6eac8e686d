package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

const dateLayout = "2006-01-02"

// GET /api/reports/sales?limit=
func (h *Handler) GetSales(c *gin.Context) {
	limit := cast.ToInt(c.DefaultQuery("limit", "50"))
	sales, err := h.reports.ListSales(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// GET /api/reports/sales/:id/items
func (h *Handler) GetSaleItems(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	s, err := h.reports.GetSale(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	items, err := h.reports.SaleItems(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": s, "items": items})
}

// GET /api/reports/summary?start=2006-01-02&end=2006-01-02
// Both days are inclusive; without parameters the summary covers today.
func (h *Handler) GetSummary(c *gin.Context) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	start, err := parseDay(c.Query("start"), today)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}
	end, err := parseDay(c.Query("end"), start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
		return
	}
	end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end is before start"})
		return
	}

	summary, err := h.reports.Summary(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"start":         start.Format(dateLayout),
		"end":           end.Format(dateLayout),
		"total_revenue": summary.TotalRevenue.StringFixed(2),
		"total_count":   summary.TotalCount,
		"currency":      h.opts.CurrencySymbol,
	})
}

func parseDay(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// GET /api/reports/top?limit=
func (h *Handler) GetTopSelling(c *gin.Context) {
	limit := cast.ToInt(c.DefaultQuery("limit", "5"))
	if limit <= 0 {
		limit = 5
	}
	top, err := h.reports.TopSelling(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

// GET /api/reports/valuation
func (h *Handler) GetStockValuation(c *gin.Context) {
	v, err := h.reports.StockValuation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /api/reports/sales.csv
func (h *Handler) ExportSales(c *gin.Context) {
	name := fmt.Sprintf("sales-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := h.reports.ExportSalesCSV(c.Request.Context(), c.Writer); err != nil {
		// headers are out already; nothing useful to send
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}
