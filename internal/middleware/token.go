package middleware

import (
	"KalaVaani/internal/entity"
	jwtPkg "KalaVaani/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

type tokenMiddleware struct {
}

func newTokenMiddleware() *tokenMiddleware {
	return &tokenMiddleware{}
}

func (m *middleware) unauthorized(ctx *fiber.Ctx, reason string) error {
	m.log.WithFields(logrus.Fields{
		"path":      ctx.Path(),
		"method":    ctx.Method(),
		"client_ip": ctx.IP(),
		"reason":    reason,
	}).Warn("Request rejected by token middleware")

	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
	})
}

// NewTokenMiddleware verifies the marketplace-issued bearer token and puts
// the artisan identity on the request context. Every voice route sits
// behind this; the session ownership checks in the service layer rely on
// the id claim being authentic.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	userToken, err := jwtPkg.VerifyTokenHeader(ctx, AccessTokenSecret)
	if err != nil {
		return m.unauthorized(ctx, err.Error())
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return m.unauthorized(ctx, "invalid token claims")
	}

	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)
	if id == "" || email == "" || username == "" {
		return m.unauthorized(ctx, "token claims are missing required fields")
	}

	ctx.Locals("user", entity.UserLoginData{
		ID:       id,
		Email:    email,
		Username: username,
	})

	return ctx.Next()
}
