// Package auth verifies admin bearer tokens and enforces role levels.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("insufficient role")
)

// Role is an admin permission level. Higher roles include lower ones.
type Role string

const (
	RoleViewer Role = "viewer" // read
	RoleEditor Role = "editor" // read, write
	RoleAdmin  Role = "admin"  // read, write, admin
)

func (r Role) level() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleEditor:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// Allows reports whether r grants at least the permissions of need.
func (r Role) Allows(need Role) bool {
	return r.level() > 0 && r.level() >= need.level()
}

// Claims are the token fields the admin API relies on.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller of an admin request.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

// Authenticator issues and validates HS256 tokens with a shared secret.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Issue signs a token for the actor that expires after ttl.
func (a *Authenticator) Issue(actor Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: actor.Email,
		Role:  actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses a token and returns its actor. Every failure wraps
// ErrUnauthenticated.
func (a *Authenticator) Verify(token string) (Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" || claims.Role.level() == 0 {
		return Actor{}, fmt.Errorf("%w: missing subject or role", ErrUnauthenticated)
	}
	return Actor{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by Require.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// bearer extracts the token from an Authorization header.
func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate resolves the request's actor and checks it holds need.
func (a *Authenticator) Authenticate(r *http.Request, need Role) (Actor, error) {
	if a == nil || len(a.secret) == 0 {
		return Actor{}, ErrUnauthenticated
	}
	token, ok := bearer(r)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	actor, err := a.Verify(token)
	if err != nil {
		return Actor{}, err
	}
	if !actor.Role.Allows(need) {
		return actor, ErrForbidden
	}
	return actor, nil
}

// Require returns middleware that rejects requests whose bearer token is
// missing, invalid or below need. onError writes the response for failures.
func (a *Authenticator) Require(need Role, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := a.Authenticate(r, need)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
