package jwtPkg

import (
	"KalaVaani/internal/entity"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// The voice API does not issue tokens. Artisans sign in against the main
// marketplace backend; this package only verifies the bearer tokens it
// minted and unpacks the identity claims the handlers need.

var (
	ErrMissingAuthHeader = errors.New("empty Authorization header")
	ErrMalformedHeader   = errors.New("authorization header is not a bearer token")
	ErrSecretNotSet      = errors.New("JWT secret not configured")
)

// VerifyTokenHeader parses and validates the Authorization bearer token
// using the secret named by secretEnvKey.
func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, ErrMissingAuthHeader
	}

	accessToken, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil, ErrMalformedHeader
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrMalformedHeader
	}

	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		return nil, ErrSecretNotSet
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	return token, nil
}

// GetUserLoginData returns the authenticated artisan the token middleware
// stored on the request.
func GetUserLoginData(c *fiber.Ctx) (entity.UserLoginData, error) {
	user, ok := c.Locals("user").(entity.UserLoginData)
	if !ok {
		return entity.UserLoginData{}, fiber.ErrUnauthorized
	}
	return user, nil
}
