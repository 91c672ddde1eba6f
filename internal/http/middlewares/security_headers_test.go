package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codelens/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.SecurityHeaders())
	r.GET("/projects", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/docs", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/docs/openapi.yaml", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve := func(path string) http.Header {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		return w.Header()
	}

	apiHeaders := serve("/projects")

	if got := apiHeaders.Get("Content-Security-Policy"); got != "default-src 'none'" {
		t.Fatalf("API CSP = %q, want the deny-all policy", got)
	}

	if got := apiHeaders.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q, want nosniff", got)
	}

	for _, path := range []string{"/docs", "/docs/openapi.yaml"} {
		csp := serve(path).Get("Content-Security-Policy")

		if !strings.Contains(csp, "https://unpkg.com") {
			t.Fatalf("%s CSP = %q, want the CDN allowance for the docs page", path, csp)
		}

		if strings.Contains(csp, "default-src 'none'") {
			t.Fatalf("%s still carries the deny-all policy", path)
		}
	}
}
