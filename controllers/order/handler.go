package ordercontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glimmerline/jewelry-api/middleware"
)

// CreateOrderHandler is the HTTP surface of checkout.
// POST /orders
func CreateOrderHandler(checkout *Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid order data: " + err.Error(),
			})
			return
		}

		confirmation, err := checkout.CreateOrder(c.Request.Context(), middleware.SessionKey(c), req)
		if err != nil {
			status := http.StatusInternalServerError
			message := "Failed to create order"
			switch {
			case errors.Is(err, ErrEmptyCart):
				status = http.StatusBadRequest
				message = "Cart is empty"
			case errors.Is(err, ErrInvalidDeliveryDate):
				status = http.StatusBadRequest
				message = err.Error()
			case errors.Is(err, ErrCheckoutInProgress):
				status = http.StatusConflict
				message = "A checkout for this session is already in progress"
			case errors.Is(err, ErrDuplicateOrderNumber):
				message = "Could not allocate an order number, please retry"
			}
			c.JSON(status, gin.H{"success": false, "message": message})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"order_number": confirmation.OrderNumber,
			"message":      confirmation.Message,
		})
	}
}
