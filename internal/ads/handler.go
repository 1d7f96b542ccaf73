package ads

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classifieds-board/backend/internal/models"
	"github.com/classifieds-board/backend/pkg/queue"
	"github.com/classifieds-board/backend/pkg/response"
	"github.com/classifieds-board/backend/pkg/storage"
)

// Store is the persistence the handler needs; *Repository implements it.
type Store interface {
	List(ctx context.Context, preds []Predicate, limit, offset int) ([]models.AdSummary, int, error)
	GetByID(ctx context.Context, id int64) (*models.AdDetail, error)
	Create(ctx context.Context, a *models.Ad) error
	SetImage(ctx context.Context, id int64, key string) (*string, error)
}

// ImageStore keeps uploaded image objects (storage.S3 or storage.Local).
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// CleanupQueue defers deletion of replaced images to the worker.
type CleanupQueue interface {
	EnqueueImageDelete(ctx context.Context, payload queue.ImageDeletePayload) error
}

// CreateRequest is the body for POST /ads/.
type CreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	AuthorID    int64    `json:"author_id" binding:"required,gt=0"`
	CategoryID  int64    `json:"category_id" binding:"required,gt=0"`
	Price       *float64 `json:"price" binding:"required,gte=0,lte=9999999999.99"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	IsPublished *bool    `json:"is_published" binding:"required"`
}

// Options configures listing and upload limits.
type Options struct {
	PageSize      int
	MaxImageBytes int64
}

// Handler handles ad HTTP endpoints.
type Handler struct {
	repo    Store
	images  ImageStore
	cleanup CleanupQueue
	opts    Options
	logger  *zap.Logger
}

// NewHandler creates an ads handler. images and cleanup may be nil: uploads are then
// refused, or replaced images are removed inline.
func NewHandler(repo Store, images ImageStore, cleanup CleanupQueue, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Handler{repo: repo, images: images, cleanup: cleanup, opts: opts, logger: logger}
}

// List handles GET /ads/?cat=&text=&location=&price_from=&price_to=&page=.
func (h *Handler) List(c *gin.Context) {
	q := c.Request.URL.Query()
	filter, err := ParseFilter(q)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := ParsePage(q, h.opts.PageSize)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.repo.List(c.Request.Context(), filter.Predicates(), page.Size, page.Offset())
	if err != nil {
		h.logger.Error("list ads failed", zap.Error(err))
		response.Internal(c, "failed to list ads")
		return
	}
	if len(items) == 0 && page.Number > 1 {
		response.NotFound(c, "invalid page")
		return
	}
	for i := range items {
		items[i].Image = h.imageURL(items[i].Image)
	}
	response.OK(c, NewPage(requestURL(c), page, total, items))
}

// GetByID handles GET /ads/:id/.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "failed to load ad", zap.Int64("ad_id", id))
		return
	}
	response.OK(c, h.present(d))
}

// Create handles POST /ads/.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.BadRequest(c, "name must not be blank")
		return
	}

	a := &models.Ad{
		Name:        req.Name,
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		Price:       *req.Price,
		Description: req.Description,
		Address:     req.Address,
		IsPublished: *req.IsPublished,
	}
	ctx := c.Request.Context()
	if err := h.repo.Create(ctx, a); err != nil {
		h.storeError(c, err, "failed to create ad")
		return
	}
	d, err := h.repo.GetByID(ctx, a.ID)
	if err != nil {
		h.storeError(c, err, "failed to load ad", zap.Int64("ad_id", a.ID))
		return
	}
	response.Created(c, h.present(d))
}

// Upload handles POST /ads/:id/upload/ with a multipart "image" field.
func (h *Handler) Upload(c *gin.Context) {
	if h.images == nil {
		response.ServiceUnavailable(c, "image storage not configured")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.repo.GetByID(ctx, id); err != nil {
		h.storeError(c, err, "failed to load ad", zap.Int64("ad_id", id))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "missing file (form field: image)")
		return
	}
	if h.opts.MaxImageBytes > 0 && file.Size > h.opts.MaxImageBytes {
		response.TooLarge(c, "image exceeds size limit of "+strconv.FormatInt(h.opts.MaxImageBytes>>20, 10)+"MB")
		return
	}
	headerType := file.Header.Get("Content-Type")
	if !storage.ValidateImageType(headerType, file.Filename) {
		response.BadRequest(c, "invalid file type: only jpg, png, webp and gif images allowed")
		return
	}
	contentType := storage.ImageContentType(headerType, file.Filename)
	key := storage.ImageKey(id, file.Filename, contentType)

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	if err := h.images.Put(ctx, key, contentType, rc, file.Size); err != nil {
		h.logger.Error("image upload failed", zap.Error(err), zap.Int64("ad_id", id), zap.String("key", key))
		response.Internal(c, "failed to upload image to storage")
		return
	}
	previous, err := h.repo.SetImage(ctx, id, key)
	if err != nil {
		h.discard(ctx, id, key)
		h.storeError(c, err, "failed to save image", zap.Int64("ad_id", id))
		return
	}
	if previous != nil && *previous != "" && *previous != key {
		h.discard(ctx, id, *previous)
	}

	d, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.storeError(c, err, "failed to load ad", zap.Int64("ad_id", id))
		return
	}
	response.OK(c, h.present(d))
}

// discard schedules removal of an unreferenced image, deleting inline when no queue is available.
func (h *Handler) discard(ctx context.Context, adID int64, key string) {
	if h.cleanup != nil {
		err := h.cleanup.EnqueueImageDelete(ctx, queue.ImageDeletePayload{AdID: adID, Key: key})
		if err == nil {
			return
		}
		h.logger.Warn("enqueue image delete failed, deleting inline", zap.Error(err), zap.String("key", key))
	}
	if err := h.images.Delete(ctx, key); err != nil {
		h.logger.Error("delete image failed", zap.Error(err), zap.Int64("ad_id", adID), zap.String("key", key))
	}
}

func (h *Handler) present(d *models.AdDetail) models.AdDetail {
	out := *d
	out.Image = h.imageURL(d.Image)
	return out
}

func (h *Handler) imageURL(key *string) *string {
	if key == nil || *key == "" || h.images == nil {
		return nil
	}
	u := h.images.URL(*key)
	return &u
}

func (h *Handler) storeError(c *gin.Context, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "ad not found")
	case errors.Is(err, ErrAuthorNotFound):
		response.NotFound(c, "author not found")
	case errors.Is(err, ErrCategoryNotFound):
		response.NotFound(c, "category not found")
	case errors.Is(err, ErrPriceOutOfRange):
		response.BadRequest(c, "price out of range")
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		response.Internal(c, msg)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid ad id")
		return 0, false
	}
	return id, true
}

// requestURL reconstructs the absolute URL of the current request for page links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	u := *c.Request.URL
	u.Scheme = scheme
	u.Host = c.Request.Host
	return &u
}
