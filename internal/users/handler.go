package users

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classifieds-board/backend/internal/middleware"
	"github.com/classifieds-board/backend/internal/models"
	"github.com/classifieds-board/backend/pkg/response"
	"github.com/classifieds-board/backend/pkg/utils"
)

// Store is the persistence the handler needs; *Repository implements it.
type Store interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, p CreateParams) (*models.User, error)
}

// CreateRequest is the body for POST /users/.
type CreateRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Location  string `json:"location"`
}

// Handler handles user HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /users/.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.ContainsAny(username, " \t\n") {
		response.BadRequest(c, "username must not contain whitespace")
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.repo.Create(c.Request.Context(), CreateParams{
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Location:     strings.TrimSpace(req.Location),
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.Conflict(c, "username already taken")
			return
		}
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, u.ToPublic())
}

// GetByID handles GET /users/:id/.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid user id")
		return
	}
	h.respondUser(c, id)
}

// Me handles GET /users/me/ for the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	h.respondUser(c, c.MustGet(middleware.ContextUserID).(int64))
}

func (h *Handler) respondUser(c *gin.Context, id int64) {
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("get user failed", zap.Error(err), zap.Int64("user_id", id))
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, u.ToPublic())
}
