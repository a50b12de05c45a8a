package ordercontroller

import "errors"

// Checkout failure categories. Handlers map these to HTTP responses; the
// core never reports a failure it cannot classify as one of them plus a
// generic persistence error.
var (
	// ErrEmptyCart means the cart had no items (zero total); no order is
	// created.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCheckoutInProgress means another checkout currently holds the
	// session lock.
	ErrCheckoutInProgress = errors.New("checkout already in progress")

	// ErrInvalidDeliveryDate means the desired delivery date did not parse
	// as YYYY-MM-DD.
	ErrInvalidDeliveryDate = errors.New("invalid desired delivery date")

	// ErrDuplicateOrderNumber is the unique-constraint collision on the
	// generated order number. Retried internally; surfaces only when the
	// bounded retry is exhausted.
	ErrDuplicateOrderNumber = errors.New("order number collision")
)
