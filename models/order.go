package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting processing
	OrderStatusProcessing OrderStatus = "processing" // Being assembled
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending PaymentStatus = "pending" // Payment not completed yet
	PaymentStatusPaid    PaymentStatus = "paid"    // Payment completed
	PaymentStatusFailed  PaymentStatus = "failed"  // Payment attempt failed

	// Payment methods
	PaymentMethodOnline  PaymentMethod = "online"  // Paid online at checkout
	PaymentMethodCourier PaymentMethod = "courier" // Pay the courier on delivery
	PaymentMethodCard    PaymentMethod = "card"    // Card on delivery
	PaymentMethodCash    PaymentMethod = "cash"    // Cash on delivery
)

// OrderStatusLabels maps order statuses to display text used in
// notifications and confirmation messages.
var OrderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Awaiting processing",
	OrderStatusProcessing: "Processing",
	OrderStatusShipped:    "Shipped",
	OrderStatusDelivered:  "Delivered",
	OrderStatusCancelled:  "Cancelled",
}

// PaymentMethodLabels maps payment methods to display text.
var PaymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodOnline:  "Online payment",
	PaymentMethodCourier: "Pay courier on delivery",
	PaymentMethodCard:    "Card on delivery",
	PaymentMethodCash:    "Cash on delivery",
}

// StatusLabel returns the display text for an order status, falling back
// to the raw value for unmapped statuses.
func StatusLabel(s OrderStatus) string {
	if label, ok := OrderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// PaymentMethodLabel returns the display text for a payment method,
// falling back to the raw value for unmapped methods.
func PaymentMethodLabel(m PaymentMethod) string {
	if label, ok := PaymentMethodLabels[m]; ok {
		return label
	}
	return string(m)
}

type Order struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"size:20;uniqueIndex;not null" json:"order_number"`

	CustomerName    string `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone   string `gorm:"size:20;not null" json:"customer_phone"`
	CustomerEmail   string `gorm:"size:254;not null" json:"customer_email"`
	DeliveryAddress string `gorm:"not null" json:"delivery_address"`

	TelegramChatID *int64 `json:"telegram_chat_id"`

	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod PaymentMethod `gorm:"type:VARCHAR(20);default:'courier'" json:"payment_method"`

	DesiredDeliveryDate *time.Time `json:"desired_delivery_date"`
	DesiredDeliveryTime *string    `gorm:"size:20" json:"desired_delivery_time"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
	// Price is a snapshot of the product price at order time; later
	// product price changes never touch it.
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}
