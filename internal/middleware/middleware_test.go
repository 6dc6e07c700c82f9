package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andybalholm/brotli"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	claims *service.Claims
}

func (s stubValidator) ValidateToken(tokenStr string) (*service.Claims, error) {
	if tokenStr != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

type stubSessions struct {
	err error
}

func (s stubSessions) ValidateSession(context.Context, uuid.UUID, string) error {
	return s.err
}

func newClaims(role model.Role) *service.Claims {
	c := &service.Claims{UserID: uuid.New(), Role: role, Name: "Ana"}
	c.ID = "jti-1"
	return c
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireJWT(t *testing.T) {
	claims := newClaims(model.RoleProfessor)
	r := gin.New()
	r.GET("/me", RequireJWT(stubValidator{claims}), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || p.UserID != claims.UserID {
			t.Errorf("principal = %+v, %v", p, ok)
		}
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{"bearer header", "/me", "Bearer good", http.StatusNoContent},
		{"lowercase scheme", "/me", "bearer good", http.StatusNoContent},
		{"query fallback", "/me?token=good", "", http.StatusNoContent},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"invalid", "/me", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if w := serve(r, req); w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	for _, tc := range []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleProfessor, http.StatusOK},
		{model.RoleStudent, http.StatusForbidden},
	} {
		r := gin.New()
		r.GET("/x",
			RequireJWT(stubValidator{newClaims(tc.role)}),
			RequireRole(model.RoleAdmin, model.RoleProfessor),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer good")
		if w := serve(r, req); w.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.role, w.Code, tc.want)
		}
	}
}

func TestCheckSession(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{service.ErrSessionInvalidated, http.StatusUnauthorized},
		{errors.New("redis down"), http.StatusInternalServerError},
	} {
		r := gin.New()
		r.GET("/x",
			RequireJWT(stubValidator{newClaims(model.RoleStudent)}),
			CheckSession(stubSessions{tc.err}),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer good")
		if w := serve(r, req); w.Code != tc.want {
			t.Fatalf("err %v: status = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestRateLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rdb, "auth", 2, time.Minute, zerolog.Nop())
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		return serve(r, req).Code
	}

	if got := hit(); got != http.StatusOK {
		t.Fatalf("first = %d", got)
	}
	if got := hit(); got != http.StatusOK {
		t.Fatalf("second = %d", got)
	}
	if got := hit(); got != http.StatusTooManyRequests {
		t.Fatalf("third = %d, want 429", got)
	}

	now = now.Add(time.Minute)
	if got := hit(); got != http.StatusOK {
		t.Fatalf("next window = %d, want 200", got)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	rl := NewRateLimiter(rdb, "auth", 1, time.Minute, zerolog.Nop())
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if got := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code; got != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, got)
		}
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("bonjour ", 400)
	r := gin.New()
	r.Use(Brotli(BrotliConfig{Quality: 5, MinLength: 1024}))
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "hi") })
	r.GET("/large", func(c *gin.Context) {
		// several writes after the threshold is crossed
		for _, chunk := range []string{large, "tail-1 ", "tail-2"} {
			_, _ = c.Writer.WriteString(chunk)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := serve(r, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "hi" {
		t.Fatalf("small body = %q, encoding %q", w.Body.String(), w.Header().Get("Content-Encoding"))
	}

	req = httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = serve(r, req)
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("expected br encoding, got %q", w.Header().Get("Content-Encoding"))
	}
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := large + "tail-1 tail-2"; string(body) != want {
		t.Fatalf("decoded length %d, want %d", len(body), len(want))
	}
}

func TestBrotliLeavesEncodedAndRefusedBodiesAlone(t *testing.T) {
	large := strings.Repeat("salut ", 400)
	r := gin.New()
	r.Use(Brotli(BrotliConfig{MinLength: 64}))
	r.GET("/plain", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/encoded", func(c *gin.Context) {
		c.Header("Content-Encoding", "gzip")
		c.String(http.StatusOK, large)
	})

	req := httptest.NewRequest(http.MethodGet, "/encoded", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := serve(r, req)
	if w.Header().Get("Content-Encoding") != "gzip" || w.Body.String() != large {
		t.Fatalf("pre-encoded body was re-encoded: %q", w.Header().Get("Content-Encoding"))
	}

	req = httptest.NewRequest(http.MethodGet, "/plain", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0")
	w = serve(r, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != large {
		t.Fatalf("br;q=0 must disable compression, got %q", w.Header().Get("Content-Encoding"))
	}
}

func TestAcceptsBrotli(t *testing.T) {
	cases := map[string]bool{
		"":                   false,
		"gzip, deflate":      false,
		"br":                 true,
		"gzip, BR":           true,
		"br;q=0.5, gzip":     true,
		"gzip;q=1, br; q=0":  false,
		"br;level=4":         true,
		"brotli, gzip;q=0.9": false,
		"br;q=bogus":         false,
	}
	for header, want := range cases {
		if got := acceptsBrotli(header); got != want {
			t.Fatalf("acceptsBrotli(%q) = %v, want %v", header, got, want)
		}
	}
}

func TestCacheControl(t *testing.T) {
	r := gin.New()
	r.GET("/x", CacheControl("no-store"), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
}
