package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/killallgit/textcast/pkg/config"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		cfg             config.SecurityConfig
		method          string
		origin          string
		expectedStatus  int
		expectedHeaders map[string]string
	}{
		{
			name:           "preflight request",
			cfg:            config.SecurityConfig{CORSOrigins: []string{"*"}, CORSMethods: []string{"GET", "POST"}},
			method:         http.MethodOptions,
			origin:         "https://example.com",
			expectedStatus: http.StatusNoContent,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST",
			},
		},
		{
			name:           "listed origin is echoed",
			cfg:            config.SecurityConfig{CORSOrigins: []string{"https://app.example.com"}},
			method:         http.MethodGet,
			origin:         "https://app.example.com",
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "https://app.example.com",
				"Vary":                        "Origin",
			},
		},
		{
			name:           "unlisted origin gets no allow header",
			cfg:            config.SecurityConfig{CORSOrigins: []string{"https://app.example.com"}},
			method:         http.MethodGet,
			origin:         "https://evil.example.com",
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS(tt.cfg))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for header, expected := range tt.expectedHeaders {
				assert.Equal(t, expected, w.Header().Get(header), "Header: %s", header)
			}
		})
	}
}

func TestRequestSizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		bodySize       int
		expectedStatus int
	}{
		{"small request under limit", 100, http.StatusOK},
		{"large request over limit", 2 * 1024 * 1024, http.StatusRequestEntityTooLarge},
		{"request at limit", 1024 * 1024, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestSizeLimit())
			router.POST("/test", func(c *gin.Context) {
				body, err := io.ReadAll(c.Request.Body)
				if err != nil {
					c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"received": len(body)})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("a", tt.bodySize)))
			req.Header.Set("Content-Type", "text/plain")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPerClientRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name              string
		requestCount      int
		perMinute         int
		burst             int
		expectSomeBlocked bool
	}{
		{"requests under burst", 3, 60, 5, false},
		{"burst exhausted", 6, 60, 3, true},
		{"disabled group", 20, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rateLimiters := &sync.Map{}
			cleanupStop := make(chan struct{})
			defer close(cleanupStop)

			router := gin.New()
			router.Use(PerClientRateLimit(rateLimiters, cleanupStop, &sync.Once{}, "test", tt.perMinute, tt.burst))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			success, blocked := 0, 0
			for i := 0; i < tt.requestCount; i++ {
				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.RemoteAddr = "127.0.0.1:12345"
				router.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					success++
				case http.StatusTooManyRequests:
					blocked++
					assert.NotEmpty(t, w.Header().Get("Retry-After"))
				}
			}

			if tt.expectSomeBlocked {
				assert.Greater(t, blocked, 0)
			} else {
				assert.Equal(t, 0, blocked)
				assert.Equal(t, tt.requestCount, success)
			}
		})
	}
}

func TestPerClientRateLimitSeparatesClientsAndGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rateLimiters := &sync.Map{}
	cleanupStop := make(chan struct{})
	defer close(cleanupStop)
	once := &sync.Once{}

	router := gin.New()
	router.GET("/a", PerClientRateLimit(rateLimiters, cleanupStop, once, "a", 1, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/b", PerClientRateLimit(rateLimiters, cleanupStop, once, "b", 1, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(path, addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/a", "127.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/a", "127.0.0.1:1"))
	assert.Equal(t, http.StatusOK, do("/a", "192.168.1.1:2"))
	assert.Equal(t, http.StatusOK, do("/b", "127.0.0.1:1"))
}
