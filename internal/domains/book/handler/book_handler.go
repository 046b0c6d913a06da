package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

const maxCoverUpload = 10 << 20

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListBooks - GET /api/books
// Query params: search, category, available, page, limit
func (h *Handler) ListBooks(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	filter := model.ListBooksFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   utils.Offset(page, limit),
	}
	if raw := c.Query("available"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Available = &v
		}
	}

	books, total, err := h.service.List(c.Request.Context(), filter)
	if model.HandleBookError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Books retrieved", books, response.NewMeta(page, limit, total))
}

// GetBook - GET /api/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	book, err := h.service.Get(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book retrieved", book)
}

// CreateBook - POST /api/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	book, err := h.service.Create(c.Request.Context(), req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Book created", book)
}

// UpdateBook - PUT /api/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book updated", book)
}

// DeleteBook - DELETE /api/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.service.Delete(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book deleted", rec)
}

// UploadCover - POST /api/books/:id/cover (multipart field "cover")
func (h *Handler) UploadCover(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("cover")
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Missing cover file", err.Error())
		return
	}
	if fh.Size > maxCoverUpload {
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Cover too large", "Maximum upload size is 10MB")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Cannot read cover file", err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCoverUpload))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Cannot read cover file", err.Error())
		return
	}

	book, err := h.service.UploadCover(c.Request.Context(), id, data)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Cover uploaded", book)
}

// ListDeleted - GET /api/books/deleted
func (h *Handler) ListDeleted(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	records, total, err := h.service.ListDeleted(c.Request.Context(), limit, utils.Offset(page, limit))
	if model.HandleBookError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Deleted books retrieved", records, response.NewMeta(page, limit, total))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
