package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/zrctl/internal/config"
)

type contextKey string

// callerContextKey holds the authenticated *config.CallerConfig.
const callerContextKey contextKey = "caller"

// AuthMiddleware admits requests whose bearer key hashes to a configured
// caller's api_key_hash.
func AuthMiddleware(callers []config.CallerConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, ok := bearerToken(r)
			if !ok {
				WriteJSONError(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}

			caller := lookupCaller(callers, apiKey)
			if caller == nil {
				WriteJSONError(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken returns the key from "Authorization: Bearer <key>".
func bearerToken(r *http.Request) (string, bool) {
	scheme, key, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

// lookupCaller compares every hash so timing does not reveal which caller matched.
func lookupCaller(callers []config.CallerConfig, apiKey string) *config.CallerConfig {
	keyHash := []byte(HashAPIKey(apiKey))
	var match *config.CallerConfig
	for i := range callers {
		if subtle.ConstantTimeCompare([]byte(callers[i].APIKeyHash), keyHash) == 1 {
			match = &callers[i]
		}
	}
	return match
}

// GetCallerIDFromContext returns the authenticated caller id, or "" when
// authentication is disabled.
func GetCallerIDFromContext(ctx context.Context) string {
	if caller, ok := ctx.Value(callerContextKey).(*config.CallerConfig); ok {
		return caller.CallerID
	}
	return ""
}

// HashAPIKey returns the api_key_hash form of a key for config.yaml.
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return "sha256:" + hex.EncodeToString(hash[:])
}
