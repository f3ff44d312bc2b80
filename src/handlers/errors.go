package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"household-inventory/src/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Unmapped errors are hidden behind a
// generic message and attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondReportError is respondError with report clients' {"message": msg} body.
func respondReportError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

// respondQuantityBindError keeps the quantity message for quantity failures
// and reports every other bind failure as is.
func respondQuantityBindError(c *gin.Context, err error) {
	if quantityBindError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidQuantity.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func quantityBindError(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Quantity" {
				return true
			}
		}
		return false
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field == "quantity"
	}
	// decimal.Decimal.UnmarshalJSON errors
	return strings.Contains(err.Error(), "decimal")
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01"}

// parseDate accepts RFC3339, YYYY-MM-DD or YYYY-MM. Dates without a zone are UTC.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", services.ErrInvalidInput)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD or RFC3339", services.ErrInvalidInput, raw)
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
