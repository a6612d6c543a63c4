package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the resolved result of a session token: who the caller is and
// the role that was current when the session was established.
type Identity struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"-"`
}

type sessionClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var defaultSecret = []byte("SUPER_SECRET_KEY_CHANGE_ME")

// SecretFromEnv returns the JWT signing key, falling back to the development
// default when JWT_SECRET is unset.
func SecretFromEnv() []byte {
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		return []byte(v)
	}
	return defaultSecret
}

// Manager establishes, resolves, and terminates sessions. Tokens are signed
// HS256 JWTs; termination records the token id in a revocation set kept
// until the token would have expired on its own.
type Manager struct {
	secret []byte
	ttl    time.Duration

	mu      sync.RWMutex
	revoked map[string]time.Time // token id -> expiry of the revoked token
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:  secret,
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

// Establish binds an identity and role to a fresh signed token.
func (m *Manager) Establish(userID, role string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Resolve maps a token back to its identity. It fails open to (nil, false)
// on a missing, malformed, expired, or terminated token.
func (m *Manager) Resolve(tokenString string) (*Identity, bool) {
	if tokenString == "" {
		return nil, false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	m.mu.RLock()
	_, terminated := m.revoked[claims.ID]
	m.mu.RUnlock()
	if terminated {
		return nil, false
	}

	return &Identity{UserID: claims.UserID, Role: claims.Role, TokenID: claims.ID}, true
}

// Terminate invalidates a token. Terminating an unknown, expired, or
// already-terminated token is a no-op.
func (m *Manager) Terminate(tokenString string) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.ID == "" {
		return
	}

	expiry := time.Now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	m.mu.Lock()
	m.revoked[claims.ID] = expiry
	m.purgeExpiredLocked()
	m.mu.Unlock()
}

// purgeExpiredLocked drops revocation entries for tokens that are past their
// own expiry. Caller must hold m.mu.
func (m *Manager) purgeExpiredLocked() {
	now := time.Now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
}
