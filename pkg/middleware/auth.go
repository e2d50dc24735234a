package middleware

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wms-platform/consignment-service/pkg/errors"
	"github.com/wms-platform/consignment-service/pkg/logging"
)

const contextKeyPrincipal = "principal"

type principalCtxKey struct{}

// Roles allowed to manage consignments
const (
	RoleMasterAdmin = "master_admin"
	RoleChildAdmin  = "child_admin"
)

// Principal is the authenticated caller
type Principal struct {
	Subject string
	Role    string
}

// Claims are the access token claims issued by the identity service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig configures bearer token verification
type AuthConfig struct {
	Enabled bool
	Secret  []byte
	Issuer  string
	// Anonymous is the principal used when Enabled is false.
	Anonymous Principal
}

// Authenticate verifies an HS256 bearer token and stores the principal on the request.
func Authenticate(config *AuthConfig) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		if !config.Enabled {
			setPrincipal(c, config.Anonymous)
			c.Next()
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			AbortWithAppError(c, errors.ErrUnauthorized("missing bearer token"))
			return
		}

		principal, err := parseToken(parser, config.Secret, tokenString)
		if err != nil {
			AbortWithAppError(c, errors.ErrUnauthorized("invalid or expired token").Wrap(err))
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireRoles rejects principals whose role is not listed.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromGin(c)
		if !ok {
			AbortWithAppError(c, errors.ErrUnauthorized(""))
			return
		}
		if !slices.Contains(roles, strings.ToLower(principal.Role)) {
			AbortWithAppError(c, errors.ErrForbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// IssueToken signs a token for subject and role. Used by tooling and tests.
func IssueToken(secret []byte, issuer, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// PrincipalFromGin returns the principal stored by Authenticate.
func PrincipalFromGin(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(contextKeyPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// PrincipalFromContext returns the principal carried by a request context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

func setPrincipal(c *gin.Context, p Principal) {
	c.Set(contextKeyPrincipal, p)
	ctx := context.WithValue(c.Request.Context(), principalCtxKey{}, p)
	if p.Subject != "" {
		ctx = logging.ContextWithUserID(ctx, p.Subject)
	}
	c.Request = c.Request.WithContext(ctx)
}

func parseToken(parser *jwt.Parser, secret []byte, tokenString string) (Principal, error) {
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("token has no subject")
	}
	return Principal{Subject: claims.Subject, Role: claims.Role}, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
