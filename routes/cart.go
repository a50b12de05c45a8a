package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartcontroller "github.com/glimmerline/jewelry-api/controllers/cart"
)

func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cart := r.Group("/cart")
	{
		cart.GET("/", cartcontroller.ViewCart(db))
		cart.POST("/items/:productID", cartcontroller.AddToCart(db))
		cart.POST("/items/:itemID/update", cartcontroller.UpdateCartItem(db))
	}
}
