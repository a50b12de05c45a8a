package routes

import (
	"github.com/gin-gonic/gin"

	ordercontroller "github.com/glimmerline/jewelry-api/controllers/order"
)

func SetupOrderRoutes(r *gin.Engine, checkout *ordercontroller.Checkout) {
	orders := r.Group("/orders")
	{
		orders.POST("/", ordercontroller.CreateOrderHandler(checkout))
	}
}
