package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const (
	defaultBrotliQuality   = 5
	defaultBrotliMinLength = 1024
)

// BrotliConfig tunes response compression. Zero fields take the defaults.
type BrotliConfig struct {
	Quality   int
	MinLength int
	// Skip exempts matching requests, e.g. long-lived streams.
	Skip func(c *gin.Context) bool
}

// Brotli compresses API responses for clients that accept br. Bodies stay
// buffered until MinLength bytes are written; shorter ones go out as-is.
// Event streams, WebSocket upgrades and already-encoded bodies are never touched.
func Brotli(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality <= 0 || cfg.Quality > brotli.BestCompression {
		cfg.Quality = defaultBrotliQuality
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = defaultBrotliMinLength
	}
	encoders := sync.Pool{
		New: func() any { return brotli.NewWriterLevel(io.Discard, cfg.Quality) },
	}

	return func(c *gin.Context) {
		if streaming(c.Request) || (cfg.Skip != nil && cfg.Skip(c)) || !acceptsBrotli(c.GetHeader("Accept-Encoding")) {
			c.Next()
			return
		}
		c.Header("Vary", "Accept-Encoding")

		w := &brotliResponse{ResponseWriter: c.Writer, threshold: cfg.MinLength, pool: &encoders}
		c.Writer = w
		defer func() {
			if err := w.close(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

// brotliResponse defers the compress-or-not decision until the body is
// known to be large enough.
type brotliResponse struct {
	gin.ResponseWriter
	threshold int
	pool      *sync.Pool

	pending []byte
	enc     *brotli.Writer
	raw     bool
}

func (w *brotliResponse) Write(p []byte) (int, error) {
	switch {
	case w.enc != nil:
		return w.enc.Write(p)
	case w.raw:
		return w.ResponseWriter.Write(p)
	}

	w.pending = append(w.pending, p...)
	if len(w.pending) < w.threshold {
		return len(p), nil
	}
	if err := w.decide(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *brotliResponse) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// decide starts the encoder, or switches to passthrough when the handler
// already encoded the body, then drains pending.
func (w *brotliResponse) decide() error {
	h := w.Header()
	if h.Get("Content-Encoding") != "" || noBody(w.Status()) {
		w.raw = true
	} else {
		h.Set("Content-Encoding", "br")
		h.Del("Content-Length")
		w.enc = w.pool.Get().(*brotli.Writer)
		w.enc.Reset(w.ResponseWriter)
	}

	pending := w.pending
	w.pending = nil
	if w.enc != nil {
		_, err := w.enc.Write(pending)
		return err
	}
	_, err := w.ResponseWriter.Write(pending)
	return err
}

// Flush sends what is pending. A body still under the threshold is sent uncompressed.
func (w *brotliResponse) Flush() {
	if w.enc == nil && !w.raw && len(w.pending) > 0 {
		w.raw = true
		_, _ = w.ResponseWriter.Write(w.pending)
		w.pending = nil
	}
	if w.enc != nil {
		_ = w.enc.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliResponse) close() error {
	if w.enc == nil {
		if len(w.pending) == 0 {
			return nil
		}
		_, err := w.ResponseWriter.Write(w.pending)
		w.pending = nil
		return err
	}
	err := w.enc.Close()
	w.enc.Reset(io.Discard)
	w.pool.Put(w.enc)
	w.enc = nil
	return err
}

func noBody(status int) bool {
	return status == http.StatusNoContent || status == http.StatusNotModified
}

func streaming(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream") ||
		strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// acceptsBrotli reports whether br is listed with a non-zero q-value.
func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "br") {
			continue
		}
		name, value, ok := strings.Cut(strings.TrimSpace(params), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
			return true
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil && q > 0
	}
	return false
}
