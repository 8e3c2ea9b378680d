package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestArchiveTypeMiddleware(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", "zip"},
		{"?archiveType=tar", "tar"},
		{"?archiveType=zip", "zip"},
		{"?archiveType=rar", "zip"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got string
			h := ArchiveTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ArchiveType(r.Context())
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/export"+tt.query, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/shopping-list", nil))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/v1/shopping-list", fields["path"])
		assert.Equal(t, int64(http.StatusTeapot), fields["status"])
		assert.Equal(t, int64(15), fields["size"])
	}
}
