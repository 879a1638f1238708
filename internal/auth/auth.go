package auth

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"kusina-service/internal/entity"
	"net/http"
	"strings"
	"time"
)

// ContextKey is where echo-jwt stores the parsed token.
const ContextKey = "user"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotAdmin        = errors.New("admin access required")
)

type JwtCustomClaims struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the caller of an operation. The zero value is anonymous.
type Principal struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Role  entity.Role
}

func (p Principal) Authenticated() bool {
	return !p.ID.IsZero()
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == entity.RoleAdmin
}

// RequireUser fails for anonymous callers.
func (p Principal) RequireUser() error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails for anonymous callers and for non-admin users.
func (p Principal) RequireAdmin() error {
	if err := p.RequireUser(); err != nil {
		return err
	}
	if p.Role != entity.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

// Owns reports whether the principal placed the order.
func (p Principal) Owns(order *entity.Order) bool {
	return p.Authenticated() && order.UserID == p.ID
}

// Signer issues HS256 tokens for logged in users.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(user *entity.User) (string, error) {
	now := s.now()
	claims := &JwtCustomClaims{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return t, nil
}

// Middleware rejects requests without a valid bearer token.
func Middleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		ContextKey:  ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token").SetInternal(err)
		},
	})
}

// PrincipalFrom returns the caller of the request, anonymous when no valid
// token was presented.
func PrincipalFrom(c echo.Context) Principal {
	token, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || token == nil {
		return Principal{}
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return Principal{}
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return Principal{}
	}
	return Principal{
		ID:    id,
		Name:  claims.Name,
		Email: strings.ToLower(claims.Email),
		Role:  claims.Role,
	}
}
