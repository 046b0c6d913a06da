package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/lending/model"
	"library-backend/internal/domains/lending/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// IssueBook - POST /api/transactions/issue {book_id, member_id}
func (h *Handler) IssueBook(c *gin.Context) {
	var req model.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	bookID, memberID, err := req.IDs()
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid id", err.Error())
		return
	}

	tx, err := h.service.Issue(c.Request.Context(), bookID, memberID)
	if model.HandleLendingError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Book issued successfully", tx)
}

// ReturnBook - POST /api/transactions/return/:id
func (h *Handler) ReturnBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tx, err := h.service.Return(c.Request.Context(), id)
	if model.HandleLendingError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book returned successfully", tx)
}

// GetTransaction - GET /api/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	v, err := h.service.Get(c.Request.Context(), id)
	if model.HandleLendingError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Transaction retrieved", v)
}

// ListActive - GET /api/transactions/active (due date ascending)
func (h *Handler) ListActive(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	views, total, err := h.service.ListActive(c.Request.Context(), limit, utils.Offset(page, limit))
	if model.HandleLendingError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Active transactions retrieved", views, response.NewMeta(page, limit, total))
}

// ListAll - GET /api/transactions (borrow date descending)
// Query params: status, book_id, member_id, from, to, page, limit
func (h *Handler) ListAll(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	filter, err := parseFilter(c)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	filter.Limit = limit
	filter.Offset = utils.Offset(page, limit)

	views, total, err := h.service.ListAll(c.Request.Context(), filter)
	if model.HandleLendingError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Transactions retrieved", views, response.NewMeta(page, limit, total))
}

// ListOverdue - GET /api/transactions/overdue
func (h *Handler) ListOverdue(c *gin.Context) {
	views, err := h.service.ListOverdue(c.Request.Context())
	if model.HandleLendingError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Overdue transactions retrieved", views, &response.Meta{Total: len(views)})
}

// Export - GET /api/transactions/export (same filters as ListAll, .xlsx download)
func (h *Handler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	f, err := h.service.ExportExcel(c.Request.Context(), filter)
	if model.HandleLendingError(c, err) {
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("[LendingHandler] Failed to stream export")
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid transaction id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(c *gin.Context) (model.ListFilter, error) {
	var f model.ListFilter

	if raw := c.Query("status"); raw != "" {
		s := model.Status(raw)
		if !s.IsValid() {
			return f, fmt.Errorf("status must be active or returned")
		}
		f.Status = &s
	}
	if raw := c.Query("book_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fmt.Errorf("book_id must be a UUID")
		}
		f.BookID = &id
	}
	if raw := c.Query("member_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fmt.Errorf("member_id must be a UUID")
		}
		f.MemberID = &id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, fmt.Errorf("from must be YYYY-MM-DD")
		}
		f.BorrowedFrom = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, fmt.Errorf("to must be YYYY-MM-DD")
		}
		end := t.AddDate(0, 0, 1)
		f.BorrowedTo = &end
	}
	return f, nil
}
