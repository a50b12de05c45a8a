package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	ordercontroller "github.com/glimmerline/jewelry-api/controllers/order"
)

// SetupRoutes is the single entry-point that wires up the catalog, cart
// and order route groups, plus the metrics endpoint.
func SetupRoutes(r *gin.Engine, db *gorm.DB, checkout *ordercontroller.Checkout) {
	SetupProductRoutes(r, db)
	SetupCartRoutes(r, db)
	SetupOrderRoutes(r, checkout)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
