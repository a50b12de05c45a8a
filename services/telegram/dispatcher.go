package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/glimmerline/jewelry-api/models"
)

// Notifier is what the checkout flow depends on: a fire-and-forget handoff
// that must never block or fail the order.
type Notifier interface {
	Enqueue(order *models.Order)
}

var notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jewelry",
	Subsystem: "telegram",
	Name:      "notifications_total",
	Help:      "Order notification attempts by outcome.",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(notificationsTotal)
}

// Dispatcher delivers order notifications from a background worker so a
// slow or unreachable Telegram endpoint never delays a checkout response.
// A full queue drops the notification rather than block.
type Dispatcher struct {
	service *Service
	queue   chan *models.Order
	timeout time.Duration
	logger  *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewDispatcher(service *Service, queueSize int, sendTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		service: service,
		queue:   make(chan *models.Order, queueSize),
		timeout: sendTimeout,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands an order to the background worker. Never blocks.
func (d *Dispatcher) Enqueue(order *models.Order) {
	select {
	case d.queue <- order:
	default:
		d.logger.Warn("notification queue full, dropping order notification",
			zap.String("order_number", order.OrderNumber))
		notificationsTotal.WithLabelValues("dropped").Inc()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case order := <-d.queue:
			d.deliver(order)
		case <-d.stop:
			// Drain what is already queued before exiting.
			for {
				select {
				case order := <-d.queue:
					d.deliver(order)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(order *models.Order) {
	// One immediate retry covers transient network errors; anything more
	// persistent is logged and dropped.
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			time.Sleep(500 * time.Millisecond)
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		ok := d.service.SendOrderNotification(ctx, order)
		cancel()
		if ok {
			notificationsTotal.WithLabelValues("sent").Inc()
			d.logger.Info("order notification sent",
				zap.String("order_number", order.OrderNumber))
			return
		}
	}
	notificationsTotal.WithLabelValues("failed").Inc()
	d.logger.Warn("order notification not delivered",
		zap.String("order_number", order.OrderNumber))
}

// Close stops the worker after draining queued notifications.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.done
}
