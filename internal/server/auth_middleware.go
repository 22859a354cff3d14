package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/internal/storage"
	"github.com/google/uuid"
)

const (
	apiKeyPrefix    = "hab_"
	liveKeyPrefix   = apiKeyPrefix + "live_"
	anonymousUserID = "anonymous"
)

type userCtxKey struct{}

type User struct {
	UserID  string
	Subject string
}

// GenerateAPIKey creates a new key for userID and stores only its hash. The
// plaintext key is returned once and cannot be recovered later.
func GenerateAPIKey(store storage.Store, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	key := liveKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := store.PutAPIKey(hashAPIKey(key), userID); err != nil {
		return "", fmt.Errorf("store api key: %w", err)
	}
	logger.Info("Generated API key", "user_id", userID, "key_hash", truncateHash(hashAPIKey(key)))
	return key, nil
}

func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}

// truncateHash shortens a hash for logs.
func truncateHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Auth middleware processing request", "method", r.Method, "path", r.URL.Path)

		ah := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(ah, "Bearer ")
		if !ok || !strings.HasPrefix(token, apiKeyPrefix) {
			RecordAuthEvent("verification", "missing_token", "apikey")
			s.handleAuthFailure(w)
			return
		}

		user, authenticated := s.authenticateAPIKey(token)
		if !authenticated {
			logger.Debug("API key authentication failed")
			RecordAuthEvent("verification", "failed", "apikey")
			s.handleAuthFailure(w)
			return
		}

		logger.DebugContext(r.Context(), "API key authentication successful", "user_id", user.UserID, "subject", user.Subject)
		RecordAuthEvent("verification", "success", "apikey")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

func (s *Server) handleAuthFailure(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="habits"`)
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

// authenticateAPIKey validates an API key and returns the associated User
func (s *Server) authenticateAPIKey(apiKey string) (*User, bool) {
	keyHash := hashAPIKey(apiKey)

	logger.Debug("Looking up API key", "keyHash", truncateHash(keyHash))
	userID, found, err := s.store.GetAPIKey(keyHash)
	if err != nil {
		logger.Error("Failed to lookup API key", "error", err)
		return nil, false
	}
	if !found {
		logger.Debug("API key not found in storage")
		return nil, false
	}

	return &User{
		UserID:  userID,
		Subject: "apikey:" + truncateHash(keyHash),
	}, true
}

// userIDFromContext extracts user ID from authenticated request context
func userIDFromContext(authEnabled bool, r *http.Request) string {
	if !authEnabled {
		return anonymousUserID
	}

	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok {
		logger.Error("No user in context")
		return ""
	}

	return user.UserID
}
