package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

// hijackableRecorder stands in for a live connection's response writer.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (r *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.hijacked = true
	server, client := net.Pipe()
	_ = client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

func TestWithRequestLoggingStatus(t *testing.T) {
	handler := WithRequestLogging(zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestWithRequestLoggingSupportsHijack(t *testing.T) {
	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}

	handler := WithRequestLogging(zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("wrapped writer must implement http.Hijacker")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack failed: %v", err)
			}
			_ = conn.Close()
		}),
	)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribe", nil))

	if !rec.hijacked {
		t.Error("hijack did not reach the underlying writer")
	}
}

func TestWithRequestLoggingUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()

	handler := WithRequestLogging(zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := w.(interface{ Unwrap() http.ResponseWriter })
			if !ok {
				t.Fatal("wrapped writer must expose Unwrap for http.ResponseController")
			}
			if u.Unwrap() != http.ResponseWriter(rec) {
				t.Error("Unwrap must return the underlying writer")
			}
		}),
	)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
}
