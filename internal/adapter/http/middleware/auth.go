package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"
	"linksphere/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const callerKey = "caller"

// Claims carries the caller's role; the user id is the registered subject.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for userID acting as role.
func GenerateToken(userID string, role entities.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth validates the bearer token and stores the usecase.Caller in the context.
func Auth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		caller, err := parseCaller(parser, secret, c.GetHeader("Authorization"))
		if err != nil {
			appErr := pkg.NewDomainErrorSimple("UNAUTHORIZED", err.Error(), http.StatusUnauthorized)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

func parseCaller(parser *jwt.Parser, secret, header string) (usecase.Caller, error) {
	if header == "" {
		return usecase.Caller{}, errors.New("authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return usecase.Caller{}, errors.New("invalid authorization header format")
	}

	claims := &Claims{}
	token, err := parser.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return usecase.Caller{}, errors.New("invalid or expired token")
	}

	role, err := entities.ParseRole(claims.Role)
	if err != nil {
		return usecase.Caller{}, fmt.Errorf("invalid token role: %w", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return usecase.Caller{}, errors.New("token has no subject")
	}
	return usecase.Caller{UserID: claims.Subject, Role: role}, nil
}

// CallerFrom returns the caller stored by Auth.
func CallerFrom(c *gin.Context) (usecase.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return usecase.Caller{}, false
	}
	caller, ok := v.(usecase.Caller)
	return caller, ok
}

// WithCaller stores caller directly; handler tests use it in place of Auth.
func WithCaller(caller usecase.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(callerKey, caller)
		c.Next()
	}
}
