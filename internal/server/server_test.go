package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/docstore"
	"github.com/rajmarketing/backend/internal/github"
	"github.com/rajmarketing/backend/internal/repository"
)

// memBlobStore backs the docstore with an in-memory map enforcing the
// SHA precondition, so handler tests run against the real store logic.
type memBlobStore struct {
	mu    sync.Mutex
	files map[string]memFile
	seq   int
}

type memFile struct {
	content []byte
	version string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{files: make(map[string]memFile)}
}

func (m *memBlobStore) Get(_ context.Context, path string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[path]
	if !ok {
		return nil, "", github.ErrNotFound
	}
	return append([]byte(nil), f.content...), f.version, nil
}

func (m *memBlobStore) Put(_ context.Context, path string, content []byte, version, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, exists := m.files[path]
	if (version == "" && exists) || (version != "" && (!exists || version != f.version)) {
		return "", github.ErrVersionConflict
	}

	m.seq++
	v := fmt.Sprintf("sha-%d", m.seq)
	m.files[path] = memFile{content: append([]byte(nil), content...), version: v}
	return v, nil
}

// captureRecorder collects recorded domain events.
type captureRecorder struct {
	mu     sync.Mutex
	events []repository.DomainEvent
}

func (c *captureRecorder) Record(_ context.Context, event repository.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureRecorder) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

func newTestServer(t *testing.T) (*Server, *captureRecorder) {
	t.Helper()
	store := docstore.New(newMemBlobStore(), zap.NewNop(), docstore.Config{})
	require.NoError(t, store.EnsureCollections(context.Background()))

	recorder := &captureRecorder{}
	return New(store, recorder, zap.NewNop()), recorder
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHandleRegisterAndLogin(t *testing.T) {
	srv, recorder := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"type":     "customer",
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword, "password must not appear in responses")

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"type":     "customer",
		"email":    "asha@example.com",
		"password": "secret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"type":     "customer",
		"email":    "asha@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, []string{"user_registered"}, recorder.actions())
}

func TestHandleRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name": "Asha",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"type":     "manager",
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown fields are rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret",
		"isAdmin":  true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOrderFlow(t *testing.T) {
	srv, recorder := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/orders", map[string]interface{}{
		"customerId": "cust-1",
		"dealerId":   "deal-1",
		"product":    "Modular Kitchen",
		"amount":     45000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	orderID := body["id"].(string)
	assert.Equal(t, "pending", body["status"])

	rec = doJSON(t, router, http.MethodPut, "/api/orders/"+orderID+"/status", map[string]interface{}{
		"status": "confirmed",
		"note":   "Confirmed by dealer",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "confirmed", body["status"])
	assert.Len(t, body["timeline"], 2)

	rec = doJSON(t, router, http.MethodPut, "/api/orders/ORD-missing/status", map[string]interface{}{
		"status": "confirmed",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/customers/cust-1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)

	assert.Equal(t, []string{"order_created", "order_status_changed"}, recorder.actions())
}

func TestHandleCreateOrderMissingCustomer(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/orders", map[string]interface{}{
		"dealerId": "deal-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUserNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/users/customer/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/manager/some-id", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/users/customer/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAdminNotifications(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	// The literal id "admin" addresses the admin role.
	rec := doJSON(t, router, http.MethodPost, "/api/notifications", map[string]interface{}{
		"userId":  "admin",
		"type":    "info",
		"message": "system notice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/admin/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var notifications []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, "admin", notifications[0]["userId"])

	rec = doJSON(t, router, http.MethodGet, "/api/users/cust-1/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifications))
	assert.Empty(t, notifications)
}

func TestHandleDashboardStats(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/orders", map[string]interface{}{"customerId": "cust-1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/payments", map[string]interface{}{
		"customerId": "cust-1",
		"amount":     100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["totalOrders"])
	assert.Equal(t, float64(1), body["pendingOrders"])
	assert.Equal(t, float64(100), body["totalRevenue"])
}

func TestHandleMembershipLookup(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/memberships", map[string]interface{}{
		"userId": "cust-1",
		"type":   "monthly",
		"amount": 499,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/cust-1/membership", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/cust-2/membership", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRespondStoreError(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.respondStoreError(rec, fmt.Errorf("write users.json: %w", github.ErrVersionConflict))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	srv.respondStoreError(rec, fmt.Errorf("read users.json: %w", github.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	srv.respondStoreError(rec, fmt.Errorf("read users.json: %w", &github.StatusError{StatusCode: 503}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
