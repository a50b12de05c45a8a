package cartcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glimmerline/jewelry-api/middleware"
	"github.com/glimmerline/jewelry-api/models"
)

// Cart item update actions.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionRemove   = "remove"
)

type UpdateItemRequest struct {
	Action string `json:"action" binding:"required,oneof=increase decrease remove"`
}

// GetOrCreateCart looks up the session's cart, creating it on first use.
func GetOrCreateCart(db *gorm.DB, sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Where("session_key = ?", sessionKey).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{SessionKey: &sessionKey}
	if err := db.Create(&cart).Error; err != nil {
		// A concurrent request may have created it between lookup and insert.
		if lookupErr := db.Where("session_key = ?", sessionKey).First(&cart).Error; lookupErr == nil {
			return &cart, nil
		}
		return nil, err
	}
	return &cart, nil
}

// AddToCart puts one unit of a product in the session cart, or increments
// the quantity when the product is already there.
// POST /cart/items/:productID
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("productID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			}
			return
		}

		cart, err := GetOrCreateCart(db, middleware.SessionKey(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		var item models.CartItem
		err = db.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
			if err := db.Create(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
				return
			}
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			return
		default:
			item.Quantity++
			if err := db.Save(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product added to cart"})
	}
}

// UpdateCartItem changes the quantity of a cart item or removes it.
// Decrease floors at quantity 1; removal is only ever explicit.
// POST /cart/items/:itemID/update
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("itemID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
			return
		}

		var input UpdateItemRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		// Scope the lookup to the caller's own cart.
		var item models.CartItem
		err = db.Joins("JOIN carts ON carts.id = cart_items.cart_id").
			Where("cart_items.id = ? AND carts.session_key = ?", itemID, middleware.SessionKey(c)).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			}
			return
		}

		switch input.Action {
		case ActionIncrease:
			item.Quantity++
		case ActionDecrease:
			if item.Quantity > 1 {
				item.Quantity--
			}
		case ActionRemove:
			if err := db.Delete(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}

		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "quantity": item.Quantity})
	}
}

// ViewCart returns the session cart with line totals and the grand total.
// GET /cart
func ViewCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := GetOrCreateCart(db, middleware.SessionKey(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		var items []models.CartItem
		if err := db.Preload("Product").Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart items"})
			return
		}

		type lineItem struct {
			models.CartItem
			Total decimal.Decimal `json:"total"`
		}

		lines := make([]lineItem, 0, len(items))
		total := decimal.Zero
		for i := range items {
			lineTotal := items[i].TotalPrice()
			total = total.Add(lineTotal)
			lines = append(lines, lineItem{CartItem: items[i], Total: lineTotal})
		}

		c.JSON(http.StatusOK, gin.H{
			"cart_id": cart.ID,
			"items":   lines,
			"total":   total,
		})
	}
}
