package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kedai/backoffice-service/internal/menu"
	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type mockUseCase struct {
	snapshots    chan []model.MenuItem
	watchErr     error
	deleteResult *dto.DeleteResult
	deleteErr    error
}

func (m *mockUseCase) CreateMenuItem(context.Context, *dto.CreateMenuItemInput) (*model.MenuItem, error) {
	return nil, nil
}

func (m *mockUseCase) GetMenuItem(context.Context, string) (*model.MenuItem, error) {
	return nil, nil
}

func (m *mockUseCase) ListMenuItems(context.Context, *dto.MenuFilters) ([]model.MenuItem, int, error) {
	return nil, 0, nil
}

func (m *mockUseCase) UpdateMenuItem(context.Context, *dto.UpdateMenuItemInput) (*model.MenuItem, error) {
	return nil, nil
}

func (m *mockUseCase) DeleteMenuItem(context.Context, string) (*dto.DeleteResult, error) {
	return m.deleteResult, m.deleteErr
}

func (m *mockUseCase) AttachImage(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}

func (m *mockUseCase) TopSelling(context.Context, int) ([]model.MenuItem, error) {
	return nil, nil
}

func (m *mockUseCase) WatchMenu(context.Context) (<-chan []model.MenuItem, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.snapshots, nil
}

func newTestRouter(uc menu.UseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "fatal", Encoding: "console"})
	h := NewMenuHandler(uc, log)

	router := gin.New()
	router.GET("/menu/stream", h.Stream)
	router.DELETE("/menu/:id", h.Delete)
	return router
}

// streamRecorder adds the CloseNotify gin's Stream needs; the channel is
// never signalled, so the stream ends only when the snapshot channel closes.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func TestStreamEmitsEachSnapshot(t *testing.T) {
	snapshots := make(chan []model.MenuItem, 2)
	snapshots <- []model.MenuItem{
		{BaseModel: model.BaseModel{ID: "m1"}, Name: "Espresso"},
	}
	snapshots <- []model.MenuItem{
		{BaseModel: model.BaseModel{ID: "m1"}, Name: "Espresso"},
		{BaseModel: model.BaseModel{ID: "m2"}, Name: "Latte"},
	}
	close(snapshots)

	router := newTestRouter(&mockUseCase{snapshots: snapshots})

	rec := newStreamRecorder()
	req := httptest.NewRequest(http.MethodGet, "/menu/stream", nil)
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(body, "event:snapshot"))
	assert.Contains(t, body, "Espresso")
	assert.Contains(t, body, "Latte")
}

func TestStreamOpenFailure(t *testing.T) {
	router := newTestRouter(&mockUseCase{watchErr: errors.New("change stream unavailable")})

	rec := newStreamRecorder()
	req := httptest.NewRequest(http.MethodGet, "/menu/stream", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteReportsCleanupFailure(t *testing.T) {
	uc := &mockUseCase{deleteResult: &dto.DeleteResult{
		Deleted:      true,
		CartsScanned: 3,
		CleanupErr:   errors.New("transaction aborted"),
	}}
	router := newTestRouter(uc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/menu/m1", nil)
	router.ServeHTTP(rec, req)

	// the item is gone, so the response is still 200 with the failure noted
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cartCleanup":"failed: transaction aborted"`)
	assert.Contains(t, rec.Body.String(), `"cartsScanned":3`)
}
