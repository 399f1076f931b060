package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	authsvc "storefront/internal/service/auth"
	ordersvc "storefront/internal/service/order"
)

// writeError maps service errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func (h *handlers) writeError(c *gin.Context, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("route", c.FullPath()).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"message": message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidEmail):
		return http.StatusBadRequest, "Email inválido"
	case errors.Is(err, authsvc.ErrPasswordTooShort):
		return http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres"
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Credenciales inválidas"
	case errors.Is(err, authsvc.ErrInvalidToken):
		return http.StatusUnauthorized, "Token inválido o expirado"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "El email ya está registrado"
	case errors.Is(err, ordersvc.ErrEmptyOrder):
		return http.StatusBadRequest, "El pedido no tiene productos"
	case errors.Is(err, ordersvc.ErrInvalidQuantity):
		return http.StatusBadRequest, "Cantidad inválida"
	case errors.Is(err, ordersvc.ErrUnknownProduct):
		return http.StatusBadRequest, "Producto no disponible"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
