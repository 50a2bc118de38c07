package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (http.Handler, *modeltest.Backend) {
	t.Helper()
	backend := modeltest.New()
	srv := NewServer("", backend, zerolog.Nop())
	return srv.Handler(), backend
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "row_counts")
}

func TestHealthEndpoint_BackendDown(t *testing.T) {
	h, b := newTestServer(t)
	b.Err = errors.New("db closed")

	w := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/health", "")
	assert.Contains(t, []int{http.StatusMethodNotAllowed, http.StatusNotFound}, w.Code)
}

func TestAnimalLifecycle(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/suppliers", `{"name":"Hill Farm","region":"North"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sp := decodeBody[model.Supplier](t, w)
	assert.True(t, sp.Active, "suppliers default to active")

	w = do(t, h, http.MethodPost, "/api/animals",
		`{"tag_number":"UK100","species":"cattle","sex":"female","live_weight_kg":"540.5","supplier_id":`+itoa(sp.ID)+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decodeBody[model.Animal](t, w)
	assert.Equal(t, model.StatusReceived, a.Status)

	w = do(t, h, http.MethodGet, "/api/animals?search=uk1&status=received", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[struct {
		Items []model.Animal `json:"items"`
		Total int            `json:"total"`
	}](t, w)
	assert.Equal(t, 1, list.Total)

	w = do(t, h, http.MethodPatch, "/api/animals/"+itoa(a.ID)+"/status", `{"status":"lairage"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/animals/"+itoa(a.ID)+"/slaughter", `{"hot_weight_kg":"301.2","grade":"U"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	carcass := decodeBody[model.Carcass](t, w)
	assert.NotEmpty(t, carcass.PublicID)

	w = do(t, h, http.MethodPost, "/api/animals/"+itoa(a.ID)+"/slaughter", `{"hot_weight_kg":"301.2","grade":"U"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPatch, "/api/carcasses/"+carcass.PublicID+"/condemn", `{"condemned":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeBody[model.Carcass](t, w).Condemned)

	w = do(t, h, http.MethodGet, "/api/stats/throughput?days=7", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/api/animals/"+itoa(a.ID), "")
	assert.Equal(t, http.StatusConflict, w.Code, "carcass still on record")

	w = do(t, h, http.MethodDelete, "/api/carcasses/"+carcass.PublicID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/carcasses/"+carcass.PublicID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationErrors(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"malformed json", http.MethodPost, "/api/suppliers", `{"name":`},
		{"missing name", http.MethodPost, "/api/suppliers", `{"region":"North"}`},
		{"bad sex", http.MethodPost, "/api/animals", `{"tag_number":"A","species":"cattle","sex":"x","live_weight_kg":"1","supplier_id":1}`},
		{"non numeric weight", http.MethodPost, "/api/animals", `{"tag_number":"A","species":"cattle","live_weight_kg":"heavy","supplier_id":1}`},
		{"bad grade", http.MethodPost, "/api/animals/1/slaughter", `{"hot_weight_kg":"300","grade":"Z"}`},
		{"status slaughtered", http.MethodPatch, "/api/animals/1/status", `{"status":"slaughtered"}`},
		{"missing condemned", http.MethodPatch, "/api/carcasses/abc/condemn", `{}`},
		{"bad id", http.MethodGet, "/api/animals/abc", ""},
		{"bad supplier filter", http.MethodGet, "/api/animals?supplier_id=x", ""},
		{"days out of range", http.MethodGet, "/api/stats/throughput?days=0", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestBackendErrorMapping(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/suppliers/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/animals", `{"tag_number":"A","species":"cattle","live_weight_kg":"-3","supplier_id":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "negative weight rejected by the backend")
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/carcasses", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
}

func TestGinRecovery(t *testing.T) {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := do(t, r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
