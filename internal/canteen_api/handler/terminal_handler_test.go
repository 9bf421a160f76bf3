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

	"github.com/campus-canteen-ledger/internal/domain/card"
	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/campus-canteen-ledger/internal/engine"
	"github.com/campus-canteen-ledger/internal/terminal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	items map[string]*menu.Item
}

func (c *stubCatalog) ResolveItems(_ context.Context, itemIDs []string) (map[string]*menu.Item, error) {
	resolved := make(map[string]*menu.Item)
	for _, id := range itemIDs {
		if item, ok := c.items[id]; ok && item.Purchasable() {
			resolved[id] = item
		}
	}
	return resolved, nil
}

func (c *stubCatalog) ListAvailable(_ context.Context) ([]*menu.Item, error) { return nil, nil }
func (c *stubCatalog) Upsert(_ context.Context, _ *menu.Item) error          { return nil }
func (c *stubCatalog) SetAvailability(_ context.Context, _ string, _ bool) error {
	return nil
}

type stubCardResolver struct {
	cards map[string]*card.Card
}

func (r *stubCardResolver) GetByCardID(_ context.Context, cardID string) (*card.Card, error) {
	c, ok := r.cards[cardID]
	if !ok {
		return nil, card.ErrCardNotFound{CardID: cardID}
	}
	return c, nil
}

type stubCharger struct {
	err error
}

func (c *stubCharger) Charge(_ context.Context, req *engine.ChargeRequest) (*engine.ChargeResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	return nil, card.ErrInsufficientBalance{Required: 1, Available: 0}
}

type nopSink struct{}

func (nopSink) Publish(_ context.Context, _ *terminal.Snapshot) error { return nil }

func newTerminalTestRouter(charger engine.Charger) (*gin.Engine, uuid.UUID) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cardholderID := uuid.New()
	catalog := &stubCatalog{items: map[string]*menu.Item{
		"samosa": {ID: "samosa", Name: "Samosa", Category: "snacks", Price: 4000, Available: true, Active: true},
	}}
	cards := &stubCardResolver{cards: map[string]*card.Card{
		"RFID-001": {CardID: "RFID-001", CardholderID: cardholderID, Status: card.StatusActive, Balance: 2000},
	}}

	registry := terminal.NewRegistry(func(terminalID string) *terminal.Machine {
		return terminal.NewMachine(terminalID, catalog, cards, charger, nopSink{}, logger)
	})

	handler := NewTerminalHandler(logger, registry)
	router := gin.Default()
	router.GET("/terminals/:id", handler.Get)
	router.POST("/terminals/:id/cart/items", handler.AddCartItem)
	router.DELETE("/terminals/:id/cart/items/:itemId", handler.RemoveCartItem)
	router.POST("/terminals/:id/checkout", handler.Checkout)
	router.POST("/terminals/:id/card", handler.PresentCard)
	router.POST("/terminals/:id/reset", handler.Reset)

	return router, cardholderID
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestTerminalHandler_Get(t *testing.T) {
	router, _ := newTerminalTestRouter(&stubCharger{})

	req, _ := http.NewRequest(http.MethodGet, "/terminals/till-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	snapshot, _ := decodeData[terminal.Snapshot](t, rr.Body.Bytes())
	assert.Equal(t, "till-1", snapshot.TerminalID)
	assert.Equal(t, terminal.StateBuilding, snapshot.Status)
}

func TestTerminalHandler_AddCartItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, _ := newTerminalTestRouter(&stubCharger{})

		rr := postJSON(t, router, "/terminals/till-1/cart/items", AddCartItemRequest{ItemID: "samosa", Quantity: 2})

		assert.Equal(t, http.StatusOK, rr.Code)
		snapshot, _ := decodeData[terminal.Snapshot](t, rr.Body.Bytes())
		require.Len(t, snapshot.Cart, 1)
		assert.Equal(t, int64(8000), snapshot.Total)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		router, _ := newTerminalTestRouter(&stubCharger{})

		rr := postJSON(t, router, "/terminals/till-1/cart/items", AddCartItemRequest{ItemID: "off-menu", Quantity: 1})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		_, topLevel := decodeData[struct{}](t, rr.Body.Bytes())
		require.NotNil(t, topLevel.Error)
		assert.Equal(t, "ITEM_UNAVAILABLE", topLevel.Error.Code)
	})

	t.Run("MissingQuantity", func(t *testing.T) {
		router, _ := newTerminalTestRouter(&stubCharger{})

		rr := postJSON(t, router, "/terminals/till-1/cart/items", map[string]string{"item_id": "samosa"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTerminalHandler_Checkout(t *testing.T) {
	t.Run("EmptyCart", func(t *testing.T) {
		router, _ := newTerminalTestRouter(&stubCharger{})

		rr := postJSON(t, router, "/terminals/till-1/checkout", struct{}{})

		assert.Equal(t, http.StatusConflict, rr.Code)
		_, topLevel := decodeData[struct{}](t, rr.Body.Bytes())
		require.NotNil(t, topLevel.Error)
		assert.Equal(t, "INVALID_CART_STATE", topLevel.Error.Code)
	})

	t.Run("Success", func(t *testing.T) {
		router, _ := newTerminalTestRouter(&stubCharger{})

		rr := postJSON(t, router, "/terminals/till-1/cart/items", AddCartItemRequest{ItemID: "samosa", Quantity: 1})
		require.Equal(t, http.StatusOK, rr.Code)

		rr = postJSON(t, router, "/terminals/till-1/checkout", struct{}{})
		assert.Equal(t, http.StatusOK, rr.Code)
		snapshot, _ := decodeData[terminal.Snapshot](t, rr.Body.Bytes())
		assert.Equal(t, terminal.StateAwaitingCard, snapshot.Status)
	})
}

func TestTerminalHandler_PresentCard(t *testing.T) {
	t.Run("UnknownCardIsAnErrorResponse", func(t *testing.T) {
		router, _ := newTerminalTestRouter(&stubCharger{})

		rr := postJSON(t, router, "/terminals/till-1/cart/items", AddCartItemRequest{ItemID: "samosa", Quantity: 1})
		require.Equal(t, http.StatusOK, rr.Code)
		rr = postJSON(t, router, "/terminals/till-1/checkout", struct{}{})
		require.Equal(t, http.StatusOK, rr.Code)

		rr = postJSON(t, router, "/terminals/till-1/card", PresentCardRequest{CardID: "RFID-MISSING"})

		assert.Equal(t, http.StatusNotFound, rr.Code)
		_, topLevel := decodeData[struct{}](t, rr.Body.Bytes())
		require.NotNil(t, topLevel.Error)
		assert.Equal(t, "CARD_NOT_FOUND", topLevel.Error.Code)

		// The terminal is still waiting for a card
		req, _ := http.NewRequest(http.MethodGet, "/terminals/till-1", nil)
		getRR := httptest.NewRecorder()
		router.ServeHTTP(getRR, req)
		snapshot, _ := decodeData[terminal.Snapshot](t, getRR.Body.Bytes())
		assert.Equal(t, terminal.StateAwaitingCard, snapshot.Status)
	})

	t.Run("FailedCaptureIsAWorkflowOutcomeNotAnHTTPError", func(t *testing.T) {
		charger := &stubCharger{err: card.ErrInsufficientBalance{Required: 8000, Available: 2000}}
		router, _ := newTerminalTestRouter(charger)

		rr := postJSON(t, router, "/terminals/till-1/cart/items", AddCartItemRequest{ItemID: "samosa", Quantity: 2})
		require.Equal(t, http.StatusOK, rr.Code)
		rr = postJSON(t, router, "/terminals/till-1/checkout", struct{}{})
		require.Equal(t, http.StatusOK, rr.Code)

		rr = postJSON(t, router, "/terminals/till-1/card", PresentCardRequest{CardID: "RFID-001"})

		assert.Equal(t, http.StatusOK, rr.Code)
		snapshot, topLevel := decodeData[terminal.Snapshot](t, rr.Body.Bytes())
		assert.Nil(t, topLevel.Error)
		assert.Equal(t, terminal.StateFailed, snapshot.Status)
		assert.Equal(t, "Insufficient balance, need 6000 more", snapshot.Message)
	})
}

func TestTerminalHandler_Reset(t *testing.T) {
	router, _ := newTerminalTestRouter(&stubCharger{})

	rr := postJSON(t, router, "/terminals/till-1/cart/items", AddCartItemRequest{ItemID: "samosa", Quantity: 1})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, router, "/terminals/till-1/reset", struct{}{})

	assert.Equal(t, http.StatusOK, rr.Code)
	snapshot, _ := decodeData[terminal.Snapshot](t, rr.Body.Bytes())
	assert.Equal(t, terminal.StateBuilding, snapshot.Status)
	assert.Empty(t, snapshot.Cart)
}
