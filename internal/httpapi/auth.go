package httpapi

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"depotrack/backend/internal/domain"
)

// AuthManager issues and verifies the HS256 bearer tokens that attribute
// requests to a user. A token carries the user's fixed role and the active
// role the session is viewing as; the two differ only for owner sessions
// that switched view.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
}

type sessionClaims struct {
	jwtlib.RegisteredClaims
	Username   string `json:"username"`
	Role       string `json:"role"`
	ActiveRole string `json:"active_role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (a *AuthManager) Issue(user domain.User, activeRole domain.Role) (string, time.Time, error) {
	if !activeRole.Valid() {
		activeRole = user.Role
	}
	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "depotrack",
		},
		Username:   user.Username,
		Role:       string(user.Role),
		ActiveRole: string(activeRole),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &sessionClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	role := domain.Role(claims.Role)
	activeRole := domain.Role(claims.ActiveRole)
	if !role.Valid() {
		return domain.Actor{}, errors.New("invalid token role")
	}
	if !activeRole.Valid() {
		activeRole = role
	}

	return domain.Actor{
		UserID:     sub,
		Username:   claims.Username,
		Role:       role,
		ActiveRole: activeRole,
	}, nil
}
