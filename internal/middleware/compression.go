package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, that gets compressed.
	MinSize int
	// Level is a compress/gzip level.
	Level int
	// CompressibleTypes lists media types to compress. Any type with a
	// +json or +yaml structured suffix is compressed as well.
	CompressibleTypes []string
}

// DefaultCompressionConfig returns defaults suited to the JSON API:
// resolution responses for large playlists compress well.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"application/json",
			"application/yaml",
			"text/plain",
		},
	}
}

func (c CompressionConfig) compressible(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if strings.HasSuffix(mediaType, "+json") || strings.HasSuffix(mediaType, "+yaml") {
		return true
	}
	return slices.Contains(c.CompressibleTypes, mediaType)
}

// gzipPools holds one *sync.Pool of gzip writers per compression level.
var gzipPools sync.Map

func gzipPool(level int) *sync.Pool {
	if p, ok := gzipPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p, _ := gzipPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			zw, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				zw, _ = gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
			}
			return zw
		},
	})
	return p.(*sync.Pool)
}

// acceptsGzip reports whether the Accept-Encoding header allows gzip. An
// explicit q=0 refuses it.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				q = f
			}
		}
		return q > 0
	}
	return false
}

// compressWriter holds back the first MinSize bytes of a response so the
// compress decision can see both the size and the final Content-Type.
type compressWriter struct {
	http.ResponseWriter
	config  CompressionConfig
	pending bytes.Buffer
	status  int
	decided bool
	zw      *gzip.Writer
}

func (c *compressWriter) WriteHeader(code int) {
	if c.decided || c.status != 0 {
		return
	}
	c.status = code
}

func (c *compressWriter) Write(p []byte) (int, error) {
	if c.decided {
		return c.out().Write(p)
	}
	c.pending.Write(p)
	if c.pending.Len() > c.config.MinSize {
		if err := c.decide(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (c *compressWriter) out() io.Writer {
	if c.zw != nil {
		return c.zw
	}
	return c.ResponseWriter
}

// decide commits the headers and flushes the held-back bytes.
func (c *compressWriter) decide() error {
	if c.decided {
		return nil
	}
	c.decided = true
	if c.status == 0 {
		c.status = http.StatusOK
	}

	h := c.Header()
	if c.pending.Len() >= c.config.MinSize &&
		h.Get("Content-Encoding") == "" &&
		c.config.compressible(h.Get("Content-Type")) {
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		c.zw = gzipPool(c.config.Level).Get().(*gzip.Writer)
		c.zw.Reset(c.ResponseWriter)
	}

	c.ResponseWriter.WriteHeader(c.status)
	_, err := c.pending.WriteTo(c.out())
	return err
}

func (c *compressWriter) close() error {
	err := c.decide()
	if c.zw != nil {
		if cerr := c.zw.Close(); err == nil {
			err = cerr
		}
		gzipPool(c.config.Level).Put(c.zw)
		c.zw = nil
	}
	return err
}

// Flush implements http.Flusher
func (c *compressWriter) Flush() {
	_ = c.decide()
	if c.zw != nil {
		_ = c.zw.Flush()
	}
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression returns a middleware that gzips compressible responses for
// clients that accept it. HEAD requests pass through untouched.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressWriter{ResponseWriter: w, config: config}
			defer func() { _ = cw.close() }()
			next.ServeHTTP(cw, r)
		})
	}
}
