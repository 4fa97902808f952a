package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
)

// SessionClaims is what a session token carries. The role is snapshotted at
// login; middleware reads it from the token for the session's whole lifetime
// and never consults the user store again.
type SessionClaims struct {
	ActorID   id.ActorID
	Role      id.Role
	SessionID id.SessionID
}

// TokenIssuer mints and parses HS256 session tokens.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenIssuer(signingKey []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{signingKey: signingKey, ttl: ttl}
}

type tokenClaims struct {
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issue mints a token for the user with a fresh session id.
func (t *TokenIssuer) Issue(user User, sessionID id.SessionID, now time.Time) (string, error) {
	claims := tokenClaims{
		Role:      user.Role.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// Parse validates a token and returns its session claims. All failures
// collapse into a generic authentication error.
func (t *TokenIssuer) Parse(raw string) (SessionClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeAuthenticationFailed, "unexpected signing method")
		}
		return t.signingKey, nil
	})
	if err != nil || !token.Valid {
		return SessionClaims{}, dErrors.New(dErrors.CodeAuthenticationFailed, "invalid session token")
	}

	actorID, err := id.ParseActorID(claims.Subject)
	if err != nil {
		return SessionClaims{}, dErrors.New(dErrors.CodeAuthenticationFailed, "invalid session token")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return SessionClaims{}, dErrors.New(dErrors.CodeAuthenticationFailed, "invalid session token")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return SessionClaims{}, dErrors.New(dErrors.CodeAuthenticationFailed, "invalid session token")
	}
	return SessionClaims{ActorID: actorID, Role: role, SessionID: sessionID}, nil
}
