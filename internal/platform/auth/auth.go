// Package auth implements bearer token authentication for the laboratory API.
// Tokens are HMAC-signed JWTs carrying the user id and role claims; roles
// gate route groups via RequireRole.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RoleLabTech = "lab_tech"
)

const (
	userIDKey   = "auth_user_id"
	userNameKey = "auth_user_name"
	rolesKey    = "auth_roles"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// Sign issues a token for the given user, valid for ttl.
func Sign(secret []byte, userID, name string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  name,
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Middleware validates the Authorization bearer token and stores the user id
// and roles on the echo context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(userIDKey, claims.Subject)
			c.Set(userNameKey, claims.Name)
			c.Set(rolesKey, claims.Roles)
			return next(c)
		}
	}
}

// DevMiddleware grants an admin identity without a token. Development only.
func DevMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(userIDKey, "dev-user")
			c.Set(userNameKey, "Desarrollo")
			c.Set(rolesKey, []string{RoleAdmin, RoleDoctor, RoleLabTech})
			return next(c)
		}
	}
}

// RequireRole rejects requests whose token carries none of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, have := range Roles(c) {
				if _, ok := want[have]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// UserID returns the authenticated user id, or "" when unauthenticated.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// UserName returns the authenticated display name.
func UserName(c echo.Context) string {
	name, _ := c.Get(userNameKey).(string)
	return name
}

// Roles returns the authenticated user's roles.
func Roles(c echo.Context) []string {
	roles, _ := c.Get(rolesKey).([]string)
	return roles
}
