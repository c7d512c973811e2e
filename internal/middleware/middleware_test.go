package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"itunes-library/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newStatusRecorder(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", rw.statusCode)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Status code changed after first WriteHeader: %d", rw.statusCode)
	}

	n, err := rw.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}

	if again := newStatusRecorder(rw); again != rw {
		t.Error("wrapping a statusRecorder should return it unchanged")
	}
	if rw.Unwrap() != w {
		t.Error("Unwrap() should return the underlying writer")
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "/api/libraries", "/api/libraries"},
		{"newline", "a\nb", "a b"},
		{"carriage return", "a\r\nb", "a  b"},
		{"null byte", "a\x00b", "ab"},
		{"ansi escape", "\x1b[31mred", "[31mred"},
		{"tab kept", "a\tb", "a\tb"},
		{"other control", "a\x07b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:5555", "1.2.3.4"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 1.2.3.4 "}, "10.0.0.1:5555", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:5555", "5.6.7.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerMiddleware(t *testing.T) {
	var out bytes.Buffer
	config := DefaultLoggingConfig()
	config.Output = &out

	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=miles%0Adavis", http.NoBody)
	req.Header.Set("User-Agent", "test agent")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := out.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one log line, got %q", line)
	}
	fields := strings.Fields(line)
	if len(fields) < 11 {
		t.Fatalf("log line has %d fields: %q", len(fields), line)
	}
	if fields[3] != http.MethodGet || fields[4] != "/api/search" {
		t.Errorf("method/path = %s %s", fields[3], fields[4])
	}
	if fields[6] != "418" || fields[7] != "15" {
		t.Errorf("status/bytes = %s %s, want 418 15", fields[6], fields[7])
	}
	if !strings.Contains(line, `"test agent"`) {
		t.Errorf("user agent not quoted: %q", line)
	}
}

func TestLoggerSkips(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		logHealthChecks bool
		wantLogged      bool
	}{
		{"api request", "/api/libraries", false, true},
		{"health check logged", "/healthz", true, true},
		{"health check skipped", "/healthz", false, false},
		{"metrics skipped", "/metrics", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			config := DefaultLoggingConfig()
			config.LogHealthChecks = tt.logHealthChecks
			config.Output = &out

			handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if logged := out.Len() > 0; logged != tt.wantLogged {
				t.Errorf("logged = %v, want %v", logged, tt.wantLogged)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/api/libraries", "/api/libraries"},
		{"/api/libraries/12", "/api/libraries/{id}"},
		{"/api/libraries/12/tracks/1001", "/api/libraries/{id}/tracks/{id}"},
		{"/a/b/c/d/e/f/g", "/a/b/c/d/e/{path}"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetricsMiddlewareRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/api/libraries/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/libraries/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/libraries/"+id, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("counter increased by %v, want 3", got)
	}
}

func TestMetricsMiddlewareSkipPaths(t *testing.T) {
	called := false
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	if !called {
		t.Error("handler not called for skipped path")
	}
	if testutil.ToFloat64(counter) != before {
		t.Error("skipped path was recorded")
	}
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"name":"So What"},`, 200)

	tests := []struct {
		name           string
		acceptEncoding string
		contentType    string
		body           string
		wantGzip       bool
	}{
		{"large json", "gzip, deflate", "application/json", large, true},
		{"small json", "gzip", "application/json", `{"ok":true}`, false},
		{"client without gzip", "", "application/json", large, false},
		{"binary type", "gzip", "application/octet-stream", large, false},
		{"json with charset", "gzip", "application/json; charset=utf-8", large, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusCreated)
				// Write in two parts to exercise buffering.
				io.WriteString(w, tt.body[:len(tt.body)/2])
				io.WriteString(w, tt.body[len(tt.body)/2:])
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/libraries/1/tracks", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusCreated {
				t.Errorf("status = %d, want 201", rec.Code)
			}

			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gotGzip, tt.wantGzip)
			}

			body := rec.Body.Bytes()
			if gotGzip {
				zr, err := gzip.NewReader(bytes.NewReader(body))
				if err != nil {
					t.Fatalf("gzip.NewReader() error = %v", err)
				}
				if body, err = io.ReadAll(zr); err != nil {
					t.Fatalf("reading gzip body: %v", err)
				}
			}
			if string(body) != tt.body {
				t.Errorf("body mismatch: got %d bytes, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestDecompressionMiddleware(t *testing.T) {
	const doc = `<plist><dict><key>Major Version</key><integer>1</integer></dict></plist>`

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	zw.Write([]byte(doc))
	zw.Close()

	var got string
	handler := Decompression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading body: %v", err)
		}
		got = string(b)
	}))

	t.Run("gzip body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(compressed.Bytes()))
		req.Header.Set("Content-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got != doc {
			t.Errorf("body = %q, want %q", got, doc)
		}
		if req.Header.Get("Content-Encoding") != "" {
			t.Error("Content-Encoding should be removed after inflating")
		}
	})

	t.Run("plain body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(doc))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if got != doc {
			t.Errorf("body = %q, want %q", got, doc)
		}
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("not gzip"))
		req.Header.Set("Content-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	config := DefaultLoggingConfig()
	config.Output = io.Discard
	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/libraries", http.NoBody)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
