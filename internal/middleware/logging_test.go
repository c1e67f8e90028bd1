package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name   string
		method string
		inner  http.HandlerFunc
		want   int
		body   string
	}{
		{"explicit status", http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, http.StatusNotFound, ""},
		{"implicit 200", http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello"))
		}, http.StatusOK, "hello"},
		{"mutation", http.MethodPatch, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}, http.StatusConflict, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/templates/x", nil)
			rr := httptest.NewRecorder()
			Logger(tt.inner).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if rr.Body.String() != tt.body {
				t.Errorf("body: got %q, want %q", rr.Body.String(), tt.body)
			}
		})
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	rw.Write([]byte("created"))

	if rw.statusCode != http.StatusCreated {
		t.Errorf("statusCode: got %d, want 201", rw.statusCode)
	}
}
