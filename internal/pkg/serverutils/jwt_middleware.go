package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OwnerKey is the fiber local holding the caller's owner identity.
const OwnerKey = "owner"

// IdentityMiddleware resolves the owner from a Bearer token when one is
// present and valid. It never rejects: handlers treat an empty owner as
// unauthenticated.
func IdentityMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Locals(OwnerKey, ownerFromHeader(ctx.Get(fiber.HeaderAuthorization), secret))
		return ctx.Next()
	}
}

// Owner returns the identity stored by IdentityMiddleware, or "".
func Owner(ctx *fiber.Ctx) string {
	owner, _ := ctx.Locals(OwnerKey).(string)
	return owner
}

func ownerFromHeader(authHeader, secret string) string {
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	tokenStr := strings.TrimSpace(authHeader[7:])
	if tokenStr == "" {
		return ""
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	for _, key := range []string{"email", "sub", "user_id"} {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
