package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"household-inventory/src/models"
	"household-inventory/src/requests"
	"household-inventory/src/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

// ============ CONSUMPTION ============

// MaxDecreaseForMonth - Most consumed item in the month of :date
func (h *ReportHandler) MaxDecreaseForMonth(c *gin.Context) {
	h.monthly(c, h.Service.MostConsumedForMonth)
}

// MinDecreaseForMonth - Least consumed item in the month of :date
func (h *ReportHandler) MinDecreaseForMonth(c *gin.Context) {
	h.monthly(c, h.Service.LeastConsumedForMonth)
}

// MaxDecreaseForRange - Most consumed item between startDate and endDate
func (h *ReportHandler) MaxDecreaseForRange(c *gin.Context) {
	h.ranged(c, h.Service.MostConsumedForRange)
}

// MinDecreaseForRange - Least consumed item between startDate and endDate
func (h *ReportHandler) MinDecreaseForRange(c *gin.Context) {
	h.ranged(c, h.Service.LeastConsumedForRange)
}

type monthlyFn func(ctx context.Context, userID string, ref time.Time) (*models.ConsumptionReport, error)

func (h *ReportHandler) monthly(c *gin.Context, fn monthlyFn) {
	ref, err := parseDate(c.Param("date"))
	if err != nil {
		respondReportError(c, err)
		return
	}

	report, err := fn(c.Request.Context(), c.Param("userId"), ref)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type rangedFn func(ctx context.Context, userID string, start, end time.Time) (*models.ConsumptionReport, error)

func (h *ReportHandler) ranged(c *gin.Context, fn rangedFn) {
	var q requests.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if q.StartDate == "" || q.EndDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Start and end dates are required."})
		return
	}

	start, err := parseDate(q.StartDate)
	if err != nil {
		respondReportError(c, err)
		return
	}
	end, err := parseDate(q.EndDate)
	if err != nil {
		respondReportError(c, err)
		return
	}

	report, err := fn(c.Request.Context(), c.Param("userId"), start, end)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ============ ITEM DETAIL ============

// ItemTransactions - Daily series of one action for one item
func (h *ReportHandler) ItemTransactions(c *gin.Context) {
	start, err := parseDate(c.Param("startDate"))
	if err != nil {
		respondReportError(c, err)
		return
	}
	end, err := parseDate(c.Param("endDate"))
	if err != nil {
		respondReportError(c, err)
		return
	}

	detail, err := h.Service.ItemTransactionDetail(c.Request.Context(), services.TransactionDetailQuery{
		ItemCode: c.Param("itemCode"),
		UserID:   c.Param("userId"),
		Start:    start,
		End:      end,
		Action:   models.TransactionAction(c.Param("action")),
	})
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ============ COST SUMMARY ============

// IncreasedSummary - Purchased quantity and cost per item, end date inclusive
func (h *ReportHandler) IncreasedSummary(c *gin.Context) {
	start, err := parseDate(c.Param("startDate"))
	if err != nil {
		respondReportError(c, err)
		return
	}
	end, err := parseDate(c.Param("endDate"))
	if err != nil {
		respondReportError(c, err)
		return
	}

	summary, err := h.Service.IncreasedSummary(c.Request.Context(), c.Param("userId"), start, end)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ============ RESTOCK ============

// RestockList - Items at or below their reorder level
func (h *ReportHandler) RestockList(c *gin.Context) {
	rows, err := h.Service.RestockList(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
