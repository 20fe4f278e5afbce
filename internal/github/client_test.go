package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL: baseURL,
		Owner:   "acme",
		Repo:    "data",
		Branch:  "main",
		Token:   "test-token",
	}, zap.NewNop())
}

func TestGet(t *testing.T) {
	// The API wraps base64 payloads at 60 columns; the client must
	// tolerate the embedded newlines.
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"orders": []}`))
	wrapped := encoded[:8] + "\n" + encoded[8:] + "\n"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/acme/data/contents/orders.json", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{
			"sha":     "abc123",
			"content": wrapped,
		})
	}))
	defer ts.Close()

	content, sha, err := newTestClient(ts.URL).Get(context.Background(), "orders.json")
	require.NoError(t, err)
	assert.Equal(t, `{"orders": []}`, string(content))
	assert.Equal(t, "abc123", sha)
}

func TestGetNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, _, err := newTestClient(ts.URL).Get(context.Background(), "orders.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broken"))
	}))
	defer ts.Close()

	_, _, err := newTestClient(ts.URL).Get(context.Background(), "orders.json")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "upstream broken")
}

func TestPut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/acme/data/contents/orders.json", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var reqBody struct {
			Message string `json:"message"`
			Content string `json:"content"`
			Branch  string `json:"branch"`
			SHA     string `json:"sha"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "Update orders.json", reqBody.Message)
		assert.Equal(t, "main", reqBody.Branch)
		assert.Equal(t, "oldsha", reqBody.SHA)

		decoded, err := base64.StdEncoding.DecodeString(reqBody.Content)
		require.NoError(t, err)
		assert.Equal(t, `{"orders": []}`, string(decoded))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]string{"sha": "newsha"},
		})
	}))
	defer ts.Close()

	sha, err := newTestClient(ts.URL).Put(context.Background(), "orders.json", []byte(`{"orders": []}`), "oldsha", "Update orders.json")
	require.NoError(t, err)
	assert.Equal(t, "newsha", sha)
}

func TestPutNewFileOmitsSHA(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.NotContains(t, reqBody, "sha")

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]string{"sha": "firstsha"},
		})
	}))
	defer ts.Close()

	sha, err := newTestClient(ts.URL).Put(context.Background(), "orders.json", []byte("{}"), "", "Update orders.json")
	require.NoError(t, err)
	assert.Equal(t, "firstsha", sha)
}

func TestPutVersionConflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := newTestClient(ts.URL).Put(context.Background(), "orders.json", []byte("{}"), "stale", "Update orders.json")
		assert.ErrorIs(t, err, ErrVersionConflict, "status %d", status)
		ts.Close()
	}
}
