package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/domains/auth/model"
	"library-backend/internal/domains/auth/service"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Login - POST /api/auth/login {username, password}
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if model.HandleAuthError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Login successful", resp)
}
