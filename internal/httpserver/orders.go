package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	ordersvc "storefront/internal/service/order"
)

type orderItemRequest struct {
	ProductID *int64           `json:"productId"`
	Nombre    string           `json:"nombre"`
	Precio    *decimal.Decimal `json:"precio"`
	Cantidad  *int             `json:"cantidad"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precio"`
	Subtotal  float64 `json:"subtotal"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	Total     float64             `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	Items     []orderItemResponse `json:"items"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Subtotal:  money(it.LineTotal()),
		})
	}
	return orderResponse{
		ID:        o.ID,
		Total:     money(o.Total),
		Status:    o.Status,
		CreatedAt: o.CreatedAt.UTC(),
		Items:     items,
	}
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido")
		return
	}
	if len(req.Items) == 0 {
		badRequest(c, "El pedido no tiene productos")
		return
	}

	lines := make([]ordersvc.Line, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == nil {
			badRequest(c, "Cada producto requiere productId")
			return
		}
		lines = append(lines, ordersvc.Line{
			ProductID:   *it.ProductID,
			Name:        it.Nombre,
			ClientPrice: it.Precio,
			Quantity:    it.Cantidad,
		})
	}

	id := identityFrom(c)
	order, err := h.orders.PlaceOrder(c.Request.Context(), id.UserID, lines)
	if err != nil {
		h.writeError(c, err)
		return
	}
	metrics.OrderPlaced()
	c.JSON(http.StatusCreated, gin.H{
		"message": "¡Pedido procesado correctamente!",
		"orderId": order.ID,
		"total":   money(order.Total),
	})
}

func (h *handlers) listOrders(c *gin.Context) {
	id := identityFrom(c)
	orders, err := h.orders.ListForUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, out)
}
