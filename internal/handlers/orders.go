package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/order-event-processor/internal/models"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
)

// RegisterOrderRoutes registers the read-side order endpoints.
//
// GET /orders      all orders in creation order
// GET /orders/:id  one order, 404 when unknown
func RegisterOrderRoutes(r gin.IRoutes, proc *processor.Processor) {
	r.GET("/orders", func(c *gin.Context) {
		orders := proc.Orders()
		views := make([]models.OrderView, 0, len(orders))
		for _, o := range orders {
			views = append(views, models.NewOrderView(o))
		}
		c.JSON(http.StatusOK, gin.H{"orders": views, "count": len(views)})
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		o, ok := proc.Order(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, models.NewOrderView(o))
	})
}
