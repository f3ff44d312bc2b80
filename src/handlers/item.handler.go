package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"household-inventory/src/requests"
	"household-inventory/src/services"
)

type ItemHandler struct {
	Service *services.ItemService
}

// CreateItem - Create an item with its opening quantity
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req requests.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expDate, err := parseOptionalDate(req.ExpDate)
	if err != nil {
		respondError(c, err)
		return
	}
	purchasedDate, err := parseOptionalDate(req.PurchasedDate)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.Service.CreateItem(c.Request.Context(), services.CreateItemRequest{
		Code:          req.Code,
		Name:          req.Name,
		Desc:          req.Desc,
		Qty:           req.Qty,
		UOM:           req.UOM,
		Type:          req.Type,
		Price:         *req.Price,
		ExpDate:       expDate,
		PurchasedDate: purchasedDate,
		ReorderLevel:  req.ReorderLevel,
		UserID:        req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListItems - Get items, optionally by owner and code keyword
func (h *ItemHandler) ListItems(c *gin.Context) {
	var q requests.ListItemsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.Service.ListItems(c.Request.Context(), services.ListItemsFilter{
		UserID:        q.UserID,
		SearchKeyword: q.SearchKeyword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// UpdateItem - Partial update of descriptive fields
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req requests.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expDate, err := parseOptionalDate(req.ExpDate)
	if err != nil {
		respondError(c, err)
		return
	}
	purchasedDate, err := parseOptionalDate(req.PurchasedDate)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.Service.UpdateItem(c.Request.Context(), id, services.UpdateItemRequest{
		Name:          req.Name,
		Desc:          req.Desc,
		UOM:           req.UOM,
		Type:          req.Type,
		Price:         req.Price,
		ExpDate:       expDate,
		PurchasedDate: purchasedDate,
		ReorderLevel:  req.ReorderLevel,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem - Delete an item and its ledger
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	if err := h.Service.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// IncreaseQty - Record a purchase
func (h *ItemHandler) IncreaseQty(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req requests.IncreaseQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondQuantityBindError(c, err)
		return
	}

	purchasedDate, err := parseOptionalDate(req.PurchasedDate)
	if err != nil {
		respondError(c, err)
		return
	}
	expDate, err := parseOptionalDate(req.ExpDate)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.Service.IncreaseQty(c.Request.Context(), id, services.IncreaseRequest{
		Quantity:      *req.Quantity,
		PurchasedDate: purchasedDate,
		ExpDate:       expDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DecreaseQty - Record consumption
func (h *ItemHandler) DecreaseQty(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req requests.DecreaseQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondQuantityBindError(c, err)
		return
	}

	item, err := h.Service.DecreaseQty(c.Request.Context(), id, services.DecreaseRequest{
		Quantity: *req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// itemID parses :id. A malformed id cannot name an item, so it is a 404.
func itemID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, services.ErrItemNotFound)
		return uuid.Nil, false
	}
	return id, true
}
