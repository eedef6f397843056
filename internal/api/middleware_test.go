package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestCORSMiddleware tests CORS header setting
func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := NewServer(newTestConfig(t))

	router := gin.New()
	router.Use(server.corsMiddleware())
	router.POST("/api/v1/batches", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"batch_id": "abc"})
	})

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{"POST carries CORS headers", http.MethodPost, http.StatusAccepted},
		{"preflight short-circuits", http.MethodOptions, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/batches", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			expectedHeaders := map[string]string{
				"Access-Control-Allow-Origin":   "*",
				"Access-Control-Allow-Methods":  "GET, POST, OPTIONS",
				"Access-Control-Expose-Headers": "Location",
			}
			for header, expectedValue := range expectedHeaders {
				if got := w.Header().Get(header); got != expectedValue {
					t.Errorf("Header %s = %q, want %q", header, got, expectedValue)
				}
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
				t.Errorf("Expected no credentials header, got %q", got)
			}
		})
	}
}

// TestQuietRequest tests which requests are demoted to DEBUG logging
func TestQuietRequest(t *testing.T) {
	tests := []struct {
		method string
		path   string
		status int
		want   bool
	}{
		{http.MethodGet, "/metrics", 200, true},
		{http.MethodGet, "/api/v1/health", 200, true},
		{http.MethodGet, "/api/v1/batches/a1b2c3d4e5f6", 200, true},
		{http.MethodGet, "/api/v1/batches/a1b2c3d4e5f6", 404, false},
		{http.MethodGet, "/api/v1/batches", 200, false},
		{http.MethodPost, "/api/v1/batches", 202, false},
		{http.MethodGet, "/api/v1/contract/stats", 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if got := quietRequest(tt.method, tt.path, tt.status); got != tt.want {
				t.Errorf("quietRequest(%s, %s, %d) = %v, want %v", tt.method, tt.path, tt.status, got, tt.want)
			}
		})
	}
}
