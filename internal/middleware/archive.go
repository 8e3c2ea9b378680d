package middleware

import (
	"context"
	"net/http"

	"github.com/drstein77/shoppinglist/internal/compress"
)

type archiveTypeKey struct{}

// ArchiveTypeMiddleware reads the archiveType query parameter (zip or tar,
// zip by default) and stores it in the request context.
func ArchiveTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		archiveType := r.URL.Query().Get("archiveType")
		if archiveType != compress.Tar && archiveType != compress.Zip {
			archiveType = compress.Zip
		}

		ctx := context.WithValue(r.Context(), archiveTypeKey{}, archiveType)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ArchiveType returns the archive type chosen by ArchiveTypeMiddleware.
func ArchiveType(ctx context.Context) string {
	if v, ok := ctx.Value(archiveTypeKey{}).(string); ok {
		return v
	}
	return compress.Zip
}
