package routes

import (
	"household-inventory/src/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterItemRoutes(r *gin.RouterGroup, items *handlers.ItemHandler, reports *handlers.ReportHandler) {
	// Items
	r.POST("", items.CreateItem)
	r.GET("", items.ListItems)
	r.PUT("/:id", items.UpdateItem)
	r.DELETE("/:id", items.DeleteItem)

	// Quantity movements
	r.PATCH("/:id/increase", items.IncreaseQty)
	r.PATCH("/:id/decrease", items.DecreaseQty)

	// Reports
	r.GET("/max-decrease/:userId/:date", reports.MaxDecreaseForMonth)
	r.GET("/min-decrease/:userId/:date", reports.MinDecreaseForMonth)
	r.GET("/max-decrease-range/:userId", reports.MaxDecreaseForRange)
	r.GET("/min-decrease-range/:userId", reports.MinDecreaseForRange)
	r.GET("/item-transactions/:itemCode/:userId/:startDate/:endDate/:action", reports.ItemTransactions)
	r.GET("/increased-summary/:userId/:startDate/:endDate", reports.IncreasedSummary)
	r.GET("/restock/:userId", reports.RestockList)
}
