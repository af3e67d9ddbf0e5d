package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/nomad-crew-ledger/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000", "*.nomadcrew.uk"},
	}

	testCases := []struct {
		name           string
		requestOrigin  string
		preflight      bool
		expectedStatus int
		expectedOrigin string
	}{
		{"allowed origin", "http://localhost:3000", false, http.StatusOK, "http://localhost:3000"},
		{"wildcard subdomain", "https://app.nomadcrew.uk", false, http.StatusOK, "https://app.nomadcrew.uk"},
		{"disallowed origin", "http://malicious.com", false, http.StatusForbidden, ""},
		{"no origin header", "", false, http.StatusOK, ""},
		{"allowed preflight", "http://localhost:3000", true, http.StatusNoContent, "http://localhost:3000"},
		{"disallowed preflight", "http://malicious.com", true, http.StatusForbidden, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(cfg))
			r.GET("/v1/trips", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			method := http.MethodGet
			if tc.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/v1/trips", nil)
			if tc.requestOrigin != "" {
				req.Header.Set("Origin", tc.requestOrigin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddlewareAllowAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(&config.ServerConfig{AllowedOrigins: []string{"*"}}))
	r.GET("/v1/trips", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
