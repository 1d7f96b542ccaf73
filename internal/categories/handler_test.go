package categories

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classifieds-board/backend/internal/models"
)

type memStore struct {
	byID    map[int64]string
	inUse   map[int64]bool
	nextID  int64
	renames int
	creates int
}

func newMemStore() *memStore {
	return &memStore{byID: map[int64]string{}, inUse: map[int64]bool{}}
}

func (m *memStore) List(context.Context) ([]models.Category, error) {
	list := []models.Category{}
	for id, name := range m.byID {
		list = append(list, models.Category{ID: id, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memStore) Create(_ context.Context, name string) (*models.Category, error) {
	m.creates++
	m.nextID++
	m.byID[m.nextID] = name
	return &models.Category{ID: m.nextID, Name: name}, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*models.Category, error) {
	name, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Category{ID: id, Name: name}, nil
}

func (m *memStore) Rename(_ context.Context, id int64, name string) (*models.Category, error) {
	if _, ok := m.byID[id]; !ok {
		return nil, ErrNotFound
	}
	m.renames++
	m.byID[id] = name
	return &models.Category{ID: id, Name: name}, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	if m.inUse[id] {
		return ErrInUse
	}
	delete(m.byID, id)
	return nil
}

func newRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())
	r := gin.New()
	r.GET("/categories/", h.List)
	r.POST("/categories/", h.Create)
	r.GET("/categories/:id/", h.GetByID)
	r.PATCH("/categories/:id/", h.Update)
	r.DELETE("/categories/:id/", h.Delete)
	return r
}

func send(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateThenList(t *testing.T) {
	r := newRouter(newMemStore())

	w := send(r, http.MethodPost, "/categories/", `{"name":"Electronics"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Electronics"}`, w.Body.String())

	w = send(r, http.MethodGet, "/categories/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Electronics"}]`, w.Body.String())
}

func TestListEmptyIsArray(t *testing.T) {
	w := send(newRouter(newMemStore()), http.MethodGet, "/categories/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateKeepsNonASCII(t *testing.T) {
	w := send(newRouter(newMemStore()), http.MethodPost, "/categories/", `{"name":"Книги"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"Книги"`)
}

func TestCreateValidation(t *testing.T) {
	r := newRouter(newMemStore())
	for _, body := range []string{`{}`, `{"name":"   "}`, `{"name":`, `[]`} {
		w := send(r, http.MethodPost, "/categories/", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestGetUsesPK(t *testing.T) {
	store := newMemStore()
	store.byID[7] = "Pets"
	r := newRouter(store)

	w := send(r, http.MethodGet, "/categories/7/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pk":7,"name":"Pets"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/categories/8/", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/categories/x/", "").Code)
}

func TestUpdateIsSingleRename(t *testing.T) {
	store := newMemStore()
	store.byID[3] = "Auto"
	r := newRouter(store)

	w := send(r, http.MethodPatch, "/categories/3/", `{"name":"Cars"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pk":3,"name":"Cars"}`, w.Body.String())
	assert.Equal(t, 1, store.renames)
	assert.Zero(t, store.creates)
	assert.Len(t, store.byID, 1)

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPatch, "/categories/4/", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPatch, "/categories/3/", `{"name":""}`).Code)
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	store.byID[1] = "Old"
	store.byID[2] = "Busy"
	store.inUse[2] = true
	r := newRouter(store)

	w := send(r, http.MethodDelete, "/categories/1/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = send(r, http.MethodDelete, "/categories/1/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "category not found", body["error"])

	assert.Equal(t, http.StatusConflict, send(r, http.MethodDelete, "/categories/2/", "").Code)
}
