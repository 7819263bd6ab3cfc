package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crystaltrading/invoice-server/internal/config"
	"github.com/crystaltrading/invoice-server/internal/counter"
	"github.com/crystaltrading/invoice-server/internal/invoice"
	"github.com/crystaltrading/invoice-server/internal/session"
	"github.com/crystaltrading/invoice-server/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	baseDir := t.TempDir()
	logger := zap.NewNop()
	files, err := storage.NewLocalFileStore(baseDir, logger)
	require.NoError(t, err)

	ctrl := session.NewController(
		[]string{"Acme Ltd", "Globex"},
		counter.NewStore(files, baseDir, logger),
		invoice.NewRenderer(invoice.DefaultLayout()),
		logger,
	)
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, ctrl, logger)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		content, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(content)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) SessionResponse {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Data    SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Select customer")
	assert.Contains(t, rec.Body.String(), "Acme Ltd")
}

func TestGetSession(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/session", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSession(t, rec)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Item 1", snap.Items[0].Description)
	assert.False(t, snap.CanGenerate)
	assert.Equal(t, "R100.00", snap.Display.Subtotal)
}

func TestItemRoutes(t *testing.T) {
	srv := newTestServer(t)

	t.Run("add item", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/items", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		snap := decodeSession(t, rec)
		require.Len(t, snap.Items, 2)
		assert.Equal(t, "Item 2", snap.Items[1].Description)
	})

	t.Run("edit item", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/items/0", map[string]interface{}{
			"description": "Widget",
			"quantity":    3,
			"price":       49.99,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		snap := decodeSession(t, rec)
		assert.Equal(t, invoice.LineItem{Description: "Widget", Quantity: 3, Price: 49.99}, snap.Items[0])
	})

	t.Run("edit with invalid quantity", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/items/0", map[string]interface{}{"quantity": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("edit with non-numeric index", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/items/abc", map[string]interface{}{"quantity": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("remove item", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodDelete, "/api/items/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeSession(t, rec).Items, 1)
	})

	t.Run("remove out of range is a no-op", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodDelete, "/api/items/5", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeSession(t, rec).Items, 1)
	})
}

func TestSelectionRoutes(t *testing.T) {
	srv := newTestServer(t)

	t.Run("select known customer", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/customer", CustomerRequest{Customer: "Acme Ltd"})
		require.Equal(t, http.StatusOK, rec.Code)
		snap := decodeSession(t, rec)
		assert.Equal(t, "Acme Ltd", snap.Customer)
		assert.True(t, snap.CanGenerate)
	})

	t.Run("placeholder clears selection", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/customer", CustomerRequest{Customer: "Select customer"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeSession(t, rec).CanGenerate)
	})

	t.Run("unknown customer rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/customer", CustomerRequest{Customer: "Initech"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("vat mode switch", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/vat-mode", VATModeRequest{VATMode: "exclusive"})
		require.Equal(t, http.StatusOK, rec.Code)
		snap := decodeSession(t, rec)
		assert.Equal(t, invoice.VATExclusive, snap.VATMode)
		assert.Equal(t, "R115.00", snap.Display.Total)
	})

	t.Run("invalid vat mode rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/vat-mode", VATModeRequest{VATMode: "zero-rated"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("rejected while no customer selected", func(t *testing.T) {
		srv := newTestServer(t)

		rec := doJSON(t, srv, http.MethodPost, "/api/generate", nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please select a customer")
	})

	t.Run("streams the PDF and resets the session", func(t *testing.T) {
		srv := newTestServer(t)
		doJSON(t, srv, http.MethodPut, "/api/customer", CustomerRequest{Customer: "Globex"})
		doJSON(t, srv, http.MethodPost, "/api/items", nil)

		rec := doJSON(t, srv, http.MethodPost, "/api/generate", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=Crystal_Trading_(i)-1.pdf", rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF", rec.Body.String()[:4])

		snap := decodeSession(t, doJSON(t, srv, http.MethodGet, "/api/session", nil))
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "Item 1", snap.Items[0].Description)
		assert.Equal(t, 1, snap.LastInvoiceNumber)
	})

	t.Run("consecutive generates advance the invoice number", func(t *testing.T) {
		srv := newTestServer(t)
		doJSON(t, srv, http.MethodPut, "/api/customer", CustomerRequest{Customer: "Globex"})

		first := doJSON(t, srv, http.MethodPost, "/api/generate", nil)
		second := doJSON(t, srv, http.MethodPost, "/api/generate", nil)

		assert.Contains(t, first.Header().Get("Content-Disposition"), "(i)-1.pdf")
		assert.Contains(t, second.Header().Get("Content-Disposition"), "(i)-2.pdf")
	})
}

func TestDownloadLast(t *testing.T) {
	srv := newTestServer(t)

	t.Run("404 before any generate", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/invoices/last", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("re-serves the last document", func(t *testing.T) {
		doJSON(t, srv, http.MethodPut, "/api/customer", CustomerRequest{Customer: "Acme Ltd"})
		generated := doJSON(t, srv, http.MethodPost, "/api/generate", nil)
		require.Equal(t, http.StatusOK, generated.Code)

		rec := doJSON(t, srv, http.MethodGet, "/api/invoices/last", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, generated.Body.Bytes(), rec.Body.Bytes())
	})
}
