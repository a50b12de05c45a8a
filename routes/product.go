package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productcontroller "github.com/glimmerline/jewelry-api/controllers/product"
)

func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/products")
	{
		products.GET("/", productcontroller.ListProducts(db))
		products.GET("/featured", productcontroller.FeaturedProducts(db))
		products.GET("/:slug", productcontroller.GetProductBySlug(db))
	}

	r.GET("/categories", productcontroller.ListCategories(db))
}
