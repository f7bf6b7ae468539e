package middleware

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/correlation"
)

func TestCorrelationIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlation.FromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(correlation.Header))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlation.Header, "cid-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "cid-123", seen)
	assert.Equal(t, "cid-123", rr.Header().Get(correlation.Header))
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := map[string]struct {
		allow      []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		"allow all reflects origin": {[]string{"*"}, http.MethodGet, "http://kiosk.local", http.StatusTeapot, "http://kiosk.local"},
		"preflight short-circuits":  {[]string{"*"}, http.MethodOptions, "http://kiosk.local", http.StatusNoContent, "http://kiosk.local"},
		"listed origin":             {[]string{"http://a", "http://kiosk.local"}, http.MethodGet, "http://KIOSK.local", http.StatusTeapot, "http://KIOSK.local"},
		"unlisted origin":           {[]string{"http://a"}, http.MethodGet, "http://kiosk.local", http.StatusTeapot, ""},
		"no origin header":          {[]string{"*"}, http.MethodGet, "", http.StatusTeapot, ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rr := httptest.NewRecorder()
			CORS(tc.allow)(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRecoverWritesJSON(t *testing.T) {
	h := CorrelationID(Recover(log.New(io.Discard, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlation.Header, "cid-9")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "cid-9", body.CorrelationID)
}
