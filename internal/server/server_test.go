package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-composer/internal/app"
	"github.com/rezonia/invoice-composer/internal/config"
	"github.com/rezonia/invoice-composer/internal/logging"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/render"
	"github.com/rezonia/invoice-composer/internal/server"
	"github.com/rezonia/invoice-composer/internal/totals"
)

func testConfig() config.Config {
	return config.Config{
		Store:         config.StoreMemory,
		Locale:        "en",
		Labels:        "en",
		ErrorDisplay:  "blur",
		ExportFormat:  "pdf",
		Sink:          config.SinkFile,
		RemoteTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *server.Server {
	t.Helper()
	a, err := app.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return server.NewServer(&server.Config{Address: ":8080", Debug: true}, a)
}

const validInvoice = `{
	"client_name": "Acme SAS",
	"id_type": "NIT",
	"id_number": "900123456",
	"email": "billing@acme.test",
	"phone": "+57 300 1234567",
	"date": "2024-03-01",
	"currency": "USD",
	"items": [{"description": "Design", "quantity": "2", "price": "100"}]
}`

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(t, testConfig()), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestOptionsEndpoint(t *testing.T) {
	w := do(t, newTestServer(t, testConfig()), http.MethodGet, "/api/v1/options", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response server.OptionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, model.CurrencyOptions, response.Currencies)
	assert.Contains(t, response.Formats, "xlsx")
}

func TestPreviewEndpoint(t *testing.T) {
	body := `{"currency": "USD", "items": [{"description": "Design", "quantity": "2", "price": "100"}, {"quantity": "x", "price": "9"}]}`
	w := do(t, newTestServer(t, testConfig()), http.MethodPost, "/api/v1/invoices/preview", body)

	require.Equal(t, http.StatusOK, w.Code)
	var summary totals.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "$200.00", summary.Formatted)
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "$0.00", summary.Lines[1].Formatted)
}

func TestPreviewEndpoint_BadBody(t *testing.T) {
	srv := newTestServer(t, testConfig())

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/invoices/preview", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/v1/invoices/preview", "{not json").Code)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := do(t, srv, http.MethodPost, "/api/v1/invoices/validate", validInvoice)
	require.Equal(t, http.StatusOK, w.Code)
	var ok server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Nil(t, ok.Error)

	bad := `{"client_name": "Acme", "id_type": "NIT", "id_number": "1", "email": "a@b.co", "phone": "1",
		"items": [{"description": "A", "quantity": "1", "price": "1"}, {"description": "", "quantity": "0", "price": "1"}]}`
	w = do(t, srv, http.MethodPost, "/api/v1/invoices/validate", bad)
	require.Equal(t, http.StatusOK, w.Code)
	var resp server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "description", resp.Error.Field)
	require.NotNil(t, resp.Error.Item)
	assert.Equal(t, 1, *resp.Error.Item)
	assert.Equal(t, "Invalid", resp.Items[1].Fields["quantity"].Error)
}

func TestSubmitEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := do(t, srv, http.MethodPost, "/api/v1/invoices", validInvoice)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Invoice struct {
			ID    string `json:"id"`
			Total string `json:"total"`
		} `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "200", resp.Invoice.Total)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/"+resp.Invoice.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"client_name":"Acme SAS"`)

	w = do(t, srv, http.MethodGet, "/api/v1/invoices/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitEndpoint_MissingEmail(t *testing.T) {
	body := `{"client_name": "Acme", "id_type": "NIT", "id_number": "1", "email": " ", "phone": "1",
		"items": [{"description": "A", "quantity": "1", "price": "1"}]}`
	w := do(t, newTestServer(t, testConfig()), http.MethodPost, "/api/v1/invoices", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeRequired, resp.Code)
	assert.Equal(t, model.FieldEmail, resp.Field)
	assert.Nil(t, resp.Item)
}

func TestSubmitEndpoint_RemoteOutcomes(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "duplicate"}`))
	}))
	defer rejecting.Close()

	unreachable := httptest.NewServer(http.NotFoundHandler())
	unreachable.Close()

	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"rejected", rejecting.URL, http.StatusConflict, model.ErrCodeSubmissionRejected},
		{"unreachable", unreachable.URL, http.StatusBadGateway, model.ErrCodeTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Store = config.StoreRemote
			cfg.RemoteURL = tt.url

			w := do(t, newTestServer(t, cfg), http.MethodPost, "/api/v1/invoices", validInvoice)
			require.Equal(t, tt.status, w.Code)
			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestRenderEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := do(t, srv, http.MethodPost, "/api/v1/invoices/render", validInvoice)
	require.Equal(t, http.StatusOK, w.Code)
	var doc render.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "$200.00", doc.TotalLine)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "$200.00", doc.Rows[0].Subtotal)

	w = do(t, srv, http.MethodPost, "/api/v1/invoices/render?output=html", validInvoice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Total: $200.00")
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		query  string
		mime   string
		prefix string
	}{
		{"", "application/pdf", "%PDF-"},
		{"?format=xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"},
		{"?format=html", "text/html; charset=utf-8", "<!DOCTYPE html>"},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/v1/invoices/export"+tt.query, validInvoice)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.mime, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=invoice-")
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte(tt.prefix)))
		})
	}
}

func TestExportEndpoint_Errors(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := do(t, srv, http.MethodPost, "/api/v1/invoices/export?format=docx", validInvoice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/invoices/export", `{"items": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCORS(t *testing.T) {
	preflight := func(srv *server.Server, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/invoices/preview", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	t.Run("all origins by default", func(t *testing.T) {
		w := preflight(newTestServer(t, testConfig()), "http://form.example.com")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allow list", func(t *testing.T) {
		a, err := app.New(context.Background(), testConfig(), logging.Discard())
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close() })
		srv := server.NewServer(&server.Config{AllowedOrigins: []string{"http://form.example.com"}}, a)

		w := preflight(srv, "http://form.example.com")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://form.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		w = preflight(srv, "http://evil.example.com")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
