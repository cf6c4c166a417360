package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/topconlabs/topcon-blog/internal/auth"
)

// AuthHandler exposes login, registration, and logout endpoints.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// Login authenticates credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}

	result, err := h.service.Login(c.Request.Context(), body.Email, body.Senha)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro interno"})
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Nome  string `json:"nome" binding:"required"`
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// Register creates an account in the default group and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}
	if strings.TrimSpace(body.Nome) == "" || strings.TrimSpace(body.Email) == "" || strings.TrimSpace(body.Senha) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}

	result, err := h.service.Register(c.Request.Context(), body.Nome, body.Email, body.Senha)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro interno"})
		return
	}
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logout acknowledges logout. Tokens are stateless, so discarding the
// token client-side is the whole contract.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout realizado com sucesso"})
}
