package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Kariqs/storefront-api/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	identityKey = "identity"

	tokenTTL = 30 * 24 * time.Hour
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the user, valid for thirty days.
func IssueToken(secret string, userID uint, email, role string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString([]byte(secret))
}

func parseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("token has no user")
	}
	return claims, nil
}

// RequireAuth verifies the bearer token and stores the caller's identity in the
// context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		claims, err := parseToken(secret, raw)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token", "error": err.Error()})
			return
		}

		ctx.Set(identityKey, services.Identity{UserID: claims.UserID, Role: claims.Role})
		ctx.Next()
	}
}

// IdentityFrom returns the identity RequireAuth stored on the request.
func IdentityFrom(ctx *gin.Context) (services.Identity, bool) {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok
}
