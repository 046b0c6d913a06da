package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/domains/member/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListMembers - GET /api/members?search=&page=&limit=
func (h *Handler) ListMembers(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	members, total, err := h.service.List(c.Request.Context(), model.ListMembersFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: utils.Offset(page, limit),
	})
	if model.HandleMemberError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Members retrieved", members, response.NewMeta(page, limit, total))
}

// GetMember - GET /api/members/:id
func (h *Handler) GetMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	member, err := h.service.Get(c.Request.Context(), id)
	if model.HandleMemberError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Member retrieved", member)
}

// CreateMember - POST /api/members
func (h *Handler) CreateMember(c *gin.Context) {
	var req model.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	member, err := h.service.Create(c.Request.Context(), req)
	if model.HandleMemberError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Member created", member)
}

// UpdateMember - PUT /api/members/:id
func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	member, err := h.service.Update(c.Request.Context(), id, req)
	if model.HandleMemberError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Member updated", member)
}

// DeleteMember - DELETE /api/members/:id
func (h *Handler) DeleteMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if model.HandleMemberError(c, h.service.Delete(c.Request.Context(), id)) {
		return
	}

	response.Success(c, http.StatusOK, "Member deleted", nil)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid member id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
