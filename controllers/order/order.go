package ordercontroller

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartcontroller "github.com/glimmerline/jewelry-api/controllers/cart"
	"github.com/glimmerline/jewelry-api/models"
	"github.com/glimmerline/jewelry-api/services/checkoutlock"
	"github.com/glimmerline/jewelry-api/services/telegram"
)

const (
	orderNumberPrefix       = "JL"
	maxOrderNumberAttempts  = 5
	orderNumberRandomDigits = 1000000 // 6 decimal digits
)

var ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "jewelry",
	Subsystem: "orders",
	Name:      "created_total",
	Help:      "Total number of orders created.",
})

func init() {
	prometheus.MustRegister(ordersCreated)
}

type CreateOrderRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	TelegramChatID  *int64 `json:"telegram_chat_id"`
	PaymentMethod   string `json:"payment_method" binding:"omitempty,oneof=online courier card cash"`

	DesiredDeliveryDate *string `json:"desired_delivery_date"` // YYYY-MM-DD
	DesiredDeliveryTime *string `json:"desired_delivery_time"` // e.g. "14:00-18:00"
}

type OrderConfirmation struct {
	OrderNumber string `json:"order_number"`
	Message     string `json:"message"`
}

// Checkout turns a session cart into a durable order.
type Checkout struct {
	db       *gorm.DB
	locker   checkoutlock.Locker
	notifier telegram.Notifier
	logger   *zap.Logger
}

func NewCheckout(db *gorm.DB, locker checkoutlock.Locker, notifier telegram.Notifier, logger *zap.Logger) *Checkout {
	return &Checkout{db: db, locker: locker, notifier: notifier, logger: logger}
}

// generateOrderNumber builds the human-facing order identifier:
// JL + YYMMDD + 6 random decimal digits. Uniqueness is enforced by the
// database constraint; collisions are retried by the caller.
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%s%06d", orderNumberPrefix, now.Format("060102"), rand.Intn(orderNumberRandomDigits))
}

// derivePaymentStatus marks online orders paid immediately. There is no
// gateway confirmation behind this; settlement for every other method is
// collected on delivery and starts out pending.
func derivePaymentStatus(method models.PaymentMethod) models.PaymentStatus {
	if method == models.PaymentMethodOnline {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusPending
}

func isDuplicateOrderNumber(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for drivers without error translation enabled.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// CreateOrder converts the session's cart into an order: computes the
// total, writes Order + OrderItems with frozen prices and clears the cart
// in one transaction, then hands the order to the notifier. Notification
// is fire-and-forget and cannot fail the checkout.
func (co *Checkout) CreateOrder(ctx context.Context, sessionKey string, req CreateOrderRequest) (*OrderConfirmation, error) {
	unlock, err := co.locker.Lock(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, checkoutlock.ErrLocked) {
			return nil, ErrCheckoutInProgress
		}
		return nil, err
	}
	defer unlock()

	cart, err := cartcontroller.GetOrCreateCart(co.db, sessionKey)
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := co.db.Preload("Product").Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].TotalPrice())
	}
	if total.IsZero() {
		return nil, ErrEmptyCart
	}

	paymentMethod := models.PaymentMethod(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCourier
	}

	var deliveryDate *time.Time
	if req.DesiredDeliveryDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DesiredDeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDeliveryDate, *req.DesiredDeliveryDate)
		}
		deliveryDate = &parsed
	}

	var order *models.Order
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		candidate := &models.Order{
			OrderNumber:         generateOrderNumber(time.Now()),
			CustomerName:        req.CustomerName,
			CustomerPhone:       req.CustomerPhone,
			CustomerEmail:       req.CustomerEmail,
			DeliveryAddress:     req.DeliveryAddress,
			TelegramChatID:      req.TelegramChatID,
			Status:              models.OrderStatusPending,
			PaymentStatus:       derivePaymentStatus(paymentMethod),
			PaymentMethod:       paymentMethod,
			DesiredDeliveryDate: deliveryDate,
			DesiredDeliveryTime: req.DesiredDeliveryTime,
			TotalAmount:         total,
		}

		err = co.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(candidate).Error; err != nil {
				return err
			}
			for i := range items {
				orderItem := models.OrderItem{
					OrderID:   candidate.ID,
					ProductID: items[i].ProductID,
					Quantity:  items[i].Quantity,
					Price:     items[i].Product.Price,
				}
				if err := tx.Create(&orderItem).Error; err != nil {
					return err
				}
			}
			return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
		})
		if err == nil {
			order = candidate
			break
		}
		if !isDuplicateOrderNumber(err) {
			return nil, err
		}
		co.logger.Warn("order number collision, regenerating",
			zap.String("order_number", candidate.OrderNumber),
			zap.Int("attempt", attempt+1))
	}
	if order == nil {
		return nil, fmt.Errorf("%w after %d attempts", ErrDuplicateOrderNumber, maxOrderNumberAttempts)
	}

	ordersCreated.Inc()
	co.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.String("payment_method", string(order.PaymentMethod)))

	if order.TelegramChatID != nil {
		co.notifier.Enqueue(order)
	}

	return &OrderConfirmation{
		OrderNumber: order.OrderNumber,
		Message: fmt.Sprintf(
			"Order %s created successfully! Payment method: %s. We will contact you shortly to confirm.",
			order.OrderNumber, models.PaymentMethodLabel(order.PaymentMethod)),
	}, nil
}
