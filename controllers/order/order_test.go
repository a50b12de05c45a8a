package ordercontroller

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glimmerline/jewelry-api/config"
	cartcontroller "github.com/glimmerline/jewelry-api/controllers/cart"
	"github.com/glimmerline/jewelry-api/models"
	"github.com/glimmerline/jewelry-api/services/checkoutlock"
	"github.com/glimmerline/jewelry-api/services/telegram"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

type captureNotifier struct {
	orders []*models.Order
}

func (n *captureNotifier) Enqueue(order *models.Order) {
	n.orders = append(n.orders, order)
}

func seedProduct(t *testing.T, db *gorm.DB, name, slug string, price string) *models.Product {
	t.Helper()
	category := models.Category{Name: "Rings " + slug, Slug: "rings-" + slug}
	require.NoError(t, db.Create(&category).Error)

	p := models.Product{
		Name:       name,
		Slug:       slug,
		CategoryID: category.ID,
		Material:   models.MaterialGold,
		Purity:     585,
		Weight:     3.5,
		Price:      decimal.RequireFromString(price),
		InStock:    true,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func addToCart(t *testing.T, db *gorm.DB, sessionKey string, product *models.Product, qty int) *models.Cart {
	t.Helper()
	cart, err := cartcontroller.GetOrCreateCart(db, sessionKey)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  qty,
	}).Error)
	return cart
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:    "Anna Petrova",
		CustomerPhone:   "+7 900 000-00-00",
		CustomerEmail:   "anna@example.com",
		DeliveryAddress: "Moscow, Arbat 1",
	}
}

func TestCreateOrderTotalsAndFrozenPrices(t *testing.T) {
	db := newTestDB(t)
	notifier := &captureNotifier{}
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), notifier, zap.NewNop())

	productA := seedProduct(t, db, "Gold Ring", "gold-ring", "1000.00")
	productB := seedProduct(t, db, "Silver Chain", "silver-chain", "500.00")

	cart := addToCart(t, db, "session-1", productA, 2)
	require.NoError(t, db.Create(&models.CartItem{
		CartID: cart.ID, ProductID: productB.ID, Quantity: 1,
	}).Error)

	confirmation, err := checkout.CreateOrder(context.Background(), "session-1", validRequest())
	require.NoError(t, err)
	require.NotNil(t, confirmation)

	var order models.Order
	require.NoError(t, db.Preload("Items").Where("order_number = ?", confirmation.OrderNumber).First(&order).Error)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("2500.00")),
		"total %s", order.TotalAmount)
	require.Len(t, order.Items, 2)

	prices := map[uint]decimal.Decimal{}
	for _, item := range order.Items {
		prices[item.ProductID] = item.Price
	}
	assert.True(t, prices[productA.ID].Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, prices[productB.ID].Equal(decimal.RequireFromString("500.00")))

	// Raising the product price later never touches the order snapshot.
	productA.Price = decimal.RequireFromString("9999.00")
	require.NoError(t, db.Save(productA).Error)

	var frozen models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", order.ID, productA.ID).First(&frozen).Error)
	assert.True(t, frozen.Price.Equal(decimal.RequireFromString("1000.00")))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), &captureNotifier{}, zap.NewNop())

	_, err := checkout.CreateOrder(context.Background(), "session-empty", validRequest())
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderClearsCartButKeepsIt(t *testing.T) {
	db := newTestDB(t)
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), &captureNotifier{}, zap.NewNop())

	product := seedProduct(t, db, "Platinum Band", "platinum-band", "3200.00")
	cart := addToCart(t, db, "session-2", product, 1)

	_, err := checkout.CreateOrder(context.Background(), "session-2", validRequest())
	require.NoError(t, err)

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	var survivor models.Cart
	assert.NoError(t, db.First(&survivor, cart.ID).Error, "cart row must survive checkout")

	// The same session checks out again with a fresh cart content.
	addToCart(t, db, "session-2", product, 3)
	second, err := checkout.CreateOrder(context.Background(), "session-2", validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, "", second.OrderNumber)
}

func TestOrderNumberFormat(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^JL240307\d{6}$`)
	for i := 0; i < 50; i++ {
		number := generateOrderNumber(now)
		assert.Regexp(t, pattern, number)
	}
}

func TestPaymentStatusDerivation(t *testing.T) {
	assert.Equal(t, models.PaymentStatusPaid, derivePaymentStatus(models.PaymentMethodOnline))
	assert.Equal(t, models.PaymentStatusPending, derivePaymentStatus(models.PaymentMethodCourier))
	assert.Equal(t, models.PaymentStatusPending, derivePaymentStatus(models.PaymentMethodCard))
	assert.Equal(t, models.PaymentStatusPending, derivePaymentStatus(models.PaymentMethodCash))
}

func TestCreateOrderPaymentMethodDefaultsToCourier(t *testing.T) {
	db := newTestDB(t)
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), &captureNotifier{}, zap.NewNop())

	product := seedProduct(t, db, "Gold Pendant", "gold-pendant", "750.00")
	addToCart(t, db, "session-3", product, 1)

	confirmation, err := checkout.CreateOrder(context.Background(), "session-3", validRequest())
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, db.Where("order_number = ?", confirmation.OrderNumber).First(&order).Error)
	assert.Equal(t, models.PaymentMethodCourier, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}

func TestCreateOrderOnlineIsMarkedPaid(t *testing.T) {
	db := newTestDB(t)
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), &captureNotifier{}, zap.NewNop())

	product := seedProduct(t, db, "Gold Earrings", "gold-earrings", "1500.00")
	addToCart(t, db, "session-4", product, 1)

	req := validRequest()
	req.PaymentMethod = "online"

	confirmation, err := checkout.CreateOrder(context.Background(), "session-4", req)
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, db.Where("order_number = ?", confirmation.OrderNumber).First(&order).Error)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}

func TestCreateOrderNotifiesOnlyWithChatID(t *testing.T) {
	db := newTestDB(t)
	notifier := &captureNotifier{}
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), notifier, zap.NewNop())

	product := seedProduct(t, db, "Silver Ring", "silver-ring", "400.00")

	addToCart(t, db, "session-5", product, 1)
	_, err := checkout.CreateOrder(context.Background(), "session-5", validRequest())
	require.NoError(t, err)
	assert.Empty(t, notifier.orders, "no chat id, no notification")

	addToCart(t, db, "session-6", product, 1)
	chatID := int64(123456)
	req := validRequest()
	req.TelegramChatID = &chatID
	_, err = checkout.CreateOrder(context.Background(), "session-6", req)
	require.NoError(t, err)
	require.Len(t, notifier.orders, 1)
	assert.Equal(t, chatID, *notifier.orders[0].TelegramChatID)
}

func TestCreateOrderInvalidDeliveryDate(t *testing.T) {
	db := newTestDB(t)
	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), &captureNotifier{}, zap.NewNop())

	product := seedProduct(t, db, "Gold Brooch", "gold-brooch", "900.00")
	addToCart(t, db, "session-7", product, 1)

	bad := "07-03-2024"
	req := validRequest()
	req.DesiredDeliveryDate = &bad

	_, err := checkout.CreateOrder(context.Background(), "session-7", req)
	assert.ErrorIs(t, err, ErrInvalidDeliveryDate)
}

func TestCreateOrderSurvivesNotificationFailure(t *testing.T) {
	db := newTestDB(t)

	// Dispatcher pointed at a dead endpoint: every send fails, checkout
	// must not notice.
	service := telegram.NewService(config.TelegramConfig{
		Token:       "test-token",
		APIHost:     "http://127.0.0.1:1",
		SendTimeout: 200 * time.Millisecond,
	}, zap.NewNop())
	dispatcher := telegram.NewDispatcher(service, 4, 200*time.Millisecond, zap.NewNop())
	defer dispatcher.Close()

	checkout := NewCheckout(db, checkoutlock.NewLocalLocker(), dispatcher, zap.NewNop())

	product := seedProduct(t, db, "Gold Bracelet", "gold-bracelet", "2100.00")
	addToCart(t, db, "session-8", product, 1)

	chatID := int64(42)
	req := validRequest()
	req.TelegramChatID = &chatID

	confirmation, err := checkout.CreateOrder(context.Background(), "session-8", req)
	require.NoError(t, err)
	assert.NotEmpty(t, confirmation.OrderNumber)
}

func TestIsDuplicateOrderNumber(t *testing.T) {
	assert.True(t, isDuplicateOrderNumber(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateOrderNumber(fmt.Errorf("UNIQUE constraint failed: orders.order_number")))
	assert.True(t, isDuplicateOrderNumber(fmt.Errorf(`duplicate key value violates unique constraint "idx_orders_order_number"`)))
	assert.False(t, isDuplicateOrderNumber(fmt.Errorf("connection refused")))
}
