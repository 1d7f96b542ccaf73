package categories

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classifieds-board/backend/internal/models"
	"github.com/classifieds-board/backend/pkg/response"
)

// Store is the persistence the handler needs; *Repository implements it.
type Store interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Rename(ctx context.Context, id int64, name string) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// NameRequest is the body for POST /categories/ and PATCH /categories/:id/.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Handler handles category HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a categories handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /categories/.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

// Create handles POST /categories/.
func (h *Handler) Create(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	cat, err := h.repo.Create(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("create category failed", zap.Error(err))
		response.Internal(c, "failed to create category")
		return
	}
	response.Created(c, cat)
}

// GetByID handles GET /categories/:id/.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cat, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load category", id)
		return
	}
	response.OK(c, cat.Detail())
}

// Update handles PATCH /categories/:id/ (rename only).
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	name, ok := bindName(c)
	if !ok {
		return
	}
	cat, err := h.repo.Rename(c.Request.Context(), id, name)
	if err != nil {
		h.fail(c, err, "failed to update category", id)
		return
	}
	response.OK(c, cat.Detail())
}

// Delete handles DELETE /categories/:id/.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete category", id)
		return
	}
	response.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error, msg string, id int64) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "category not found")
	case errors.Is(err, ErrInUse):
		response.Conflict(c, "category still has ads")
	default:
		h.logger.Error(msg, zap.Error(err), zap.Int64("category_id", id))
		response.Internal(c, msg)
	}
}

func bindName(c *gin.Context) (string, bool) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.BadRequest(c, "name must not be blank")
		return "", false
	}
	return name, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid category id")
		return 0, false
	}
	return id, true
}
