package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ResolveItems(ctx context.Context, itemIDs []string) (map[string]*menu.Item, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*menu.Item), args.Error(1)
}

func (m *MockCatalog) ListAvailable(ctx context.Context) ([]*menu.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*menu.Item), args.Error(1)
}

func (m *MockCatalog) Upsert(ctx context.Context, item *menu.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalog) SetAvailability(ctx context.Context, itemID string, available bool) error {
	args := m.Called(ctx, itemID, available)
	return args.Error(0)
}

func TestMenuHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		handler := NewMenuHandler(logger, mockCatalog)

		items := []*menu.Item{
			{ID: "samosa", Name: "Samosa", Category: "snacks", Price: 4000, Available: true, Active: true},
			{ID: "tea", Name: "Masala Tea", Category: "drinks", Price: 1500, Available: true, Active: true},
		}
		mockCatalog.On("ListAvailable", mock.Anything).Return(items, nil)

		router := setupTestRouter()
		router.GET("/menu", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/menu", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		responseBody, _ := decodeData[[]menu.Item](t, rr.Body.Bytes())
		require.Len(t, responseBody, 2)
		assert.Equal(t, "samosa", responseBody[0].ID)
		mockCatalog.AssertExpectations(t)
	})
}

func TestMenuHandler_UpsertItem(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		handler := NewMenuHandler(logger, mockCatalog)

		mockCatalog.On("Upsert", mock.Anything, mock.MatchedBy(func(item *menu.Item) bool {
			return item.ID == "samosa" && item.Price == 4000 && item.Active
		})).Return(nil)

		router := setupTestRouter()
		router.POST("/menu/items", handler.UpsertItem)

		jsonBody, _ := json.Marshal(MenuItemRequest{
			ID:        "samosa",
			Name:      "Samosa",
			Category:  "snacks",
			Price:     4000,
			Available: true,
		})
		req, _ := http.NewRequest(http.MethodPost, "/menu/items", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		handler := NewMenuHandler(logger, mockCatalog)

		router := setupTestRouter()
		router.POST("/menu/items", handler.UpsertItem)

		jsonBody, _ := json.Marshal(map[string]string{"id": "samosa"})
		req, _ := http.NewRequest(http.MethodPost, "/menu/items", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockCatalog.AssertExpectations(t)
	})
}

func TestMenuHandler_SetAvailability(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		handler := NewMenuHandler(logger, mockCatalog)

		mockCatalog.On("SetAvailability", mock.Anything, "samosa", false).Return(nil)

		router := setupTestRouter()
		router.PATCH("/menu/items/:id/availability", handler.SetAvailability)

		jsonBody := []byte(`{"available": false}`)
		req, _ := http.NewRequest(http.MethodPatch, "/menu/items/samosa/availability", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		handler := NewMenuHandler(logger, mockCatalog)

		mockCatalog.On("SetAvailability", mock.Anything, "ghost", true).
			Return(menu.ErrItemNotFound{ItemID: "ghost"})

		router := setupTestRouter()
		router.PATCH("/menu/items/:id/availability", handler.SetAvailability)

		jsonBody := []byte(`{"available": true}`)
		req, _ := http.NewRequest(http.MethodPatch, "/menu/items/ghost/availability", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		_, topLevel := decodeData[struct{}](t, rr.Body.Bytes())
		require.NotNil(t, topLevel.Error)
		assert.Equal(t, "ITEM_NOT_FOUND", topLevel.Error.Code)
		mockCatalog.AssertExpectations(t)
	})
}
