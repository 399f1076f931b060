package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// RoutingKeyOrderPlaced is the routing key of OrderPlaced messages.
const RoutingKeyOrderPlaced = "order.placed"

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error
	Close() error
}

type OrderPlaced struct {
	EventID  string          `json:"eventId"`
	OrderID  int64           `json:"orderId"`
	UserID   int64           `json:"userId"`
	Total    decimal.Decimal `json:"total"`
	Items    []OrderLine     `json:"items"`
	PlacedAt time.Time       `json:"placedAt"`
}

type OrderLine struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// NewOrderPlaced builds the event for a persisted order.
func NewOrderPlaced(o domain.Order) OrderPlaced {
	lines := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	placedAt := o.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}
	return OrderPlaced{
		EventID:  uuid.NewString(),
		OrderID:  o.ID,
		UserID:   o.UserID,
		Total:    o.Total,
		Items:    lines,
		PlacedAt: placedAt,
	}
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

func (Noop) Close() error { return nil }
