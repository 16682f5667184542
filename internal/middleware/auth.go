package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

type contextKey string

const (
	ClientKey    contextKey = "client"
	RequestIDKey contextKey = "request_id"
)

// publicPaths are never behind API-key auth or rate limiting.
var publicPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// KeysFromList names each configured key client-1, client-2, ... so logs and
// rate-limit buckets never carry the key itself.
func KeysFromList(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for i, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out[fmt.Sprintf("client-%d", i+1)] = k
		}
	}
	return out
}

// APIKeyAuth validates API key from Authorization or X-API-Key header.
// An empty key set disables the check.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				// Support both "Bearer <key>" and "<key>" formats
				apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			apiKey = strings.TrimSpace(apiKey)
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			// constant-time comparison
			var client string
			for name, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					client = name
					break
				}
			}
			if client == "" {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext extracts the authenticated client name from context
func GetClientFromContext(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKey).(string); ok {
		return client
	}
	return ""
}
