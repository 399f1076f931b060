package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/events"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
)

var (
	// ErrEmptyOrder is returned when an order has no lines.
	ErrEmptyOrder = errors.New("order has no items")
	// ErrInvalidQuantity is returned for quantities outside 1..MaxQuantity
	// and for orders whose total cannot be stored.
	ErrInvalidQuantity = errors.New("quantity out of range")
	// ErrUnknownProduct is returned when a line references a missing or inactive product.
	ErrUnknownProduct = errors.New("unknown product")
)

const publishTimeout = 5 * time.Second

// MaxQuantity is the largest quantity accepted on a single line.
const MaxQuantity = 9999

// maxOrderTotal is the largest amount NUMERIC(10,2) can hold.
var maxOrderTotal = decimal.RequireFromString("99999999.99")

// Line is one requested order line as submitted by the client. Quantity
// defaults to 1 when nil; ClientPrice is informational only.
type Line struct {
	ProductID   int64
	Name        string
	ClientPrice *decimal.Decimal
	Quantity    *int
}

type Service struct {
	products  productrepo.Repository
	orders    orderrepo.Repository
	publisher events.Publisher
	logger    zerolog.Logger
}

func New(products productrepo.Repository, orders orderrepo.Repository, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		products:  products,
		orders:    orders,
		publisher: publisher,
		logger:    logger.With().Str("svc", "order").Logger(),
	}
}

// PlaceOrder prices lines from the catalog, stores the order with its items
// in one transaction and announces it.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, lines []Line) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for i, l := range lines {
		if l.ProductID <= 0 {
			return nil, fmt.Errorf("%w: item %d has no productId", ErrUnknownProduct, i)
		}
		if l.Quantity != nil && (*l.Quantity < 1 || *l.Quantity > MaxQuantity) {
			return nil, fmt.Errorf("%w: item %d has quantity %d, allowed 1..%d", ErrInvalidQuantity, i, *l.Quantity, MaxQuantity)
		}
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			ids = append(ids, l.ProductID)
		}
	}

	catalog, err := s.products.GetActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := catalog[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, l.ProductID)
		}
		qty := 1
		if l.Quantity != nil {
			qty = *l.Quantity
		}
		if l.ClientPrice != nil && !l.ClientPrice.Equal(p.Price) {
			s.logger.Warn().
				Int64("user_id", userID).
				Int64("product_id", p.ID).
				Str("client_price", l.ClientPrice.String()).
				Str("catalog_price", p.Price.StringFixed(2)).
				Msg("client price differs from catalog, using catalog")
		}
		items = append(items, domain.OrderItem{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price})
	}

	total := domain.SumItems(items)
	if total.GreaterThan(maxOrderTotal) {
		return nil, fmt.Errorf("%w: order total %s exceeds %s", ErrInvalidQuantity, total.StringFixed(2), maxOrderTotal.StringFixed(2))
	}

	created, err := s.orders.Create(ctx, domain.Order{
		UserID: userID,
		Total:  total,
		Status: domain.OrderStatusPending,
		Items:  items,
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, *created)
	return created, nil
}

// announce publishes order.placed. Failures are logged and never surface.
func (s *Service) announce(ctx context.Context, o domain.Order) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	evt := events.NewOrderPlaced(o)
	if err := s.publisher.PublishOrderPlaced(pubCtx, evt); err != nil {
		s.logger.Error().Err(err).Int64("order_id", o.ID).Str("event_id", evt.EventID).Msg("publish order.placed")
	}
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
