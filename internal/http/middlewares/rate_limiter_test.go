package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codelens/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func limitedRouter(limit int, window time.Duration) *gin.Engine {
	r := gin.New()

	rl := middlewares.NewRateLimiter(limit, window)
	r.Use(rl.RateLimiterMiddleware(middlewares.KeyByIP))

	r.POST("/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func TestRateLimiter_BlocksAboveLimit(t *testing.T) {
	r := limitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d got status %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected a Retry-After header on the limited response")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	r := limitedRouter(1, time.Minute)

	first := httptest.NewRecorder()
	reqA := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	reqA.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(first, reqA)

	if first.Code != http.StatusOK {
		t.Fatalf("first client got %d, want %d", first.Code, http.StatusOK)
	}

	// a different address gets its own bucket
	second := httptest.NewRecorder()
	reqB := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	reqB.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(second, reqB)

	if second.Code != http.StatusOK {
		t.Fatalf("second client got %d, want %d", second.Code, http.StatusOK)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	r := limitedRouter(1, 20*time.Millisecond)

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("first request got %d", code)
	}

	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request got %d, want %d", code, http.StatusTooManyRequests)
	}

	time.Sleep(30 * time.Millisecond)

	if code := send(); code != http.StatusOK {
		t.Fatalf("request after window reset got %d, want %d", code, http.StatusOK)
	}
}

// userLimitedRouter runs an identity stub before the limiter, mirroring how
// the protected group orders RequireAuth ahead of the user-keyed limiter.
func userLimitedRouter(limit int, window time.Duration) *gin.Engine {
	r := gin.New()

	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("auth.userID", id)
		}

		c.Next()
	})

	rl := middlewares.NewRateLimiter(limit, window)
	r.Use(rl.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	r.GET("/projects", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func TestRateLimiter_UserKeyFollowsUserAcrossAddresses(t *testing.T) {
	r := userLimitedRouter(1, time.Minute)

	send := func(userID, addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.Header.Set("X-Test-User", userID)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("user-a", "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request got %d, want %d", code, http.StatusOK)
	}

	// same user from a new address still hits the same bucket
	if code := send("user-a", "10.0.0.2:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("same user from second address got %d, want %d", code, http.StatusTooManyRequests)
	}

	// another user behind the first address is unaffected
	if code := send("user-b", "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("different user got %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimiter_UserKeyFallsBackToIP(t *testing.T) {
	r := userLimitedRouter(1, time.Minute)

	send := func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request got %d, want %d", code, http.StatusOK)
	}

	if code := send("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Fatalf("second request from same host got %d, want %d", code, http.StatusTooManyRequests)
	}

	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("other host got %d, want %d", code, http.StatusOK)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.POST("/projects", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name           string
		method         string
		contentType    string
		wantStatusCode int
	}{
		{name: "json_accepted", method: http.MethodPost, contentType: "application/json", wantStatusCode: http.StatusOK},
		{name: "json_with_charset", method: http.MethodPost, contentType: "application/json; charset=utf-8", wantStatusCode: http.StatusOK},
		{name: "missing_content_type", method: http.MethodPost, contentType: "", wantStatusCode: http.StatusUnsupportedMediaType},
		{name: "form_rejected", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", wantStatusCode: http.StatusUnsupportedMediaType},
		{name: "get_unaffected", method: http.MethodGet, contentType: "", wantStatusCode: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/projects", nil)

			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatusCode)
			}
		})
	}
}
