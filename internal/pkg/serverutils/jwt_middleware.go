package serverutils

import (
	"fmt"

	"bookreview-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalUserId = "user_id"
	LocalRole   = "role"
)

// ParseToken verifies an HS256 token and returns its user_id and role claims.
func ParseToken(secret, tokenStr string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return uuid.Nil, "", apperror.Unauthorized("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", apperror.Unauthorized("Invalid token claims")
	}

	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, "", apperror.Unauthorized("Token missing user_id")
	}
	role, _ := claims["role"].(string)
	return userId, role, nil
}

// JwtMiddleware validates the bearer token and stores user_id and role in the request locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return apperror.Unauthorized("Missing or invalid authorization header")
		}

		userId, role, err := ParseToken(secret, authHeader[7:])
		if err != nil {
			return err
		}

		ctx.Locals(LocalUserId, userId.String())
		ctx.Locals(LocalRole, role)
		return ctx.Next()
	}
}

// RequireRoles must run after JwtMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		role, _ := ctx.Locals(LocalRole).(string)
		if role == "" {
			return apperror.Forbidden("Access denied: Role missing")
		}
		for _, allowed := range roles {
			if role == allowed {
				return ctx.Next()
			}
		}
		return apperror.Forbidden("Access denied: requires role %v", roles)
	}
}

func CurrentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals(LocalUserId).(string)
	if !ok {
		return uuid.Nil, apperror.Unauthorized("Unauthorized")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("Invalid user ID")
	}
	return userId, nil
}
