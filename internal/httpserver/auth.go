package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido")
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registro correcto. Ingresa para continuar.",
		"email":   u.Email,
	})
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido")
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   session.Token,
		"email":   session.User.Email,
		"message": "¡Bienvenido!",
	})
}

func (h *handlers) me(c *gin.Context) {
	id := identityFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"id":        id.UserID,
		"email":     id.Email,
		"expiresAt": id.ExpiresAt.UTC(),
	})
}
