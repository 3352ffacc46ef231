package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogs swaps the global logger for a buffer-backed one for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func redactRouter(opts RedactOptions) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RedactingLogger(opts))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRedactingLogger_ScrubsQueryPII(t *testing.T) {
	buf := captureLogs(t)
	r := redactRouter(RedactOptions{})

	target := "/x?email=anna@example.com&ref=0d9a9c5e-38f2-4a57-9d2b-1f6c62a1d9aa"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	out := buf.String()
	if strings.Contains(out, "anna@example.com") {
		t.Fatalf("email leaked to log: %s", out)
	}
	if strings.Contains(out, "0d9a9c5e-38f2-4a57-9d2b-1f6c62a1d9aa") {
		t.Fatalf("uuid leaked to log: %s", out)
	}
	if !strings.Contains(out, "[REDACTED:email]") || !strings.Contains(out, "[REDACTED:id]") {
		t.Fatalf("redaction markers missing: %s", out)
	}
}

func TestRedactingLogger_MasksSensitiveHeaders(t *testing.T) {
	buf := captureLogs(t)
	r := redactRouter(RedactOptions{MaskHeaders: []string{"Idempotency-Key"}})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer super-secret-token")
	req.Header.Set("Idempotency-Key", "order-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := buf.String()
	if strings.Contains(out, "super-secret-token") || strings.Contains(out, "order-42") {
		t.Fatalf("masked header value leaked: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("mask marker missing: %s", out)
	}
}

func TestRedactingLogger_AttachesRequestLogger(t *testing.T) {
	captureLogs(t)
	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	var attached bool
	r.GET("/x", func(c *gin.Context) {
		_, attached = c.Get("logger")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if !attached {
		t.Fatalf("request-scoped logger not attached")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("max<=0 should disable truncation: %q", got)
	}
}
