package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newIDRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	r, seen := newIDRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("response should carry a generated request ID")
	}
	if *seen != id {
		t.Fatalf("context ID %q != header ID %q", *seen, id)
	}
}

func TestRequestIDKeepsSaneInboundID(t *testing.T) {
	r, seen := newIDRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "retry-chain_042")
	r.ServeHTTP(w, req)

	if *seen != "retry-chain_042" {
		t.Fatalf("inbound ID not kept: %q", *seen)
	}
	if got := w.Header().Get(RequestIDHeader); got != "retry-chain_042" {
		t.Fatalf("response header = %q", got)
	}
}

func TestRequestIDReplacesUnsafeInboundID(t *testing.T) {
	r, _ := newIDRouter()

	for _, inbound := range []string{
		"has spaces",
		"quote\"break",
		strings.Repeat("x", 65),
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, inbound)
		r.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got == inbound || got == "" {
			t.Fatalf("unsafe inbound %q should be replaced, got %q", inbound, got)
		}
	}
}
