package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"crm/internal/model"
	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorKey = "actor"

var ErrInvalidToken = errors.New("invalid token")

// UserSyncer resolves token claims to a stored user
type UserSyncer interface {
	Sync(ctx context.Context, id service.Identity) (*model.User, error)
}

// actorCacheEntry stores a resolved actor with TTL
type actorCacheEntry struct {
	actor     model.Actor
	expiresAt time.Time
}

// Authenticator verifies HS256 tokens issued by the identity provider and maps
// them to local users.
type Authenticator struct {
	secret []byte
	issuer string
	users  UserSyncer

	cache    sync.Map // open_id -> actorCacheEntry
	cacheTTL time.Duration
}

func NewAuthenticator(secret, issuer string, users UserSyncer) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		issuer:   issuer,
		users:    users,
		cacheTTL: time.Minute,
	}
}

// ParseToken validates signature, expiry and issuer and returns the identity claims.
func (a *Authenticator) ParseToken(tokenString string) (service.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return service.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return service.Identity{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return service.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	return service.Identity{OpenID: sub, Name: name, Email: email}, nil
}

// Resolve turns a raw token into an actor, consulting the cache first.
func (a *Authenticator) Resolve(ctx context.Context, tokenString string) (model.Actor, error) {
	id, err := a.ParseToken(tokenString)
	if err != nil {
		return model.Actor{}, err
	}

	if entry, ok := a.cache.Load(id.OpenID); ok {
		cached := entry.(actorCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.actor, nil
		}
	}

	user, err := a.users.Sync(ctx, id)
	if err != nil {
		return model.Actor{}, err
	}
	actor := user.Actor()
	a.cache.Store(id.OpenID, actorCacheEntry{actor: actor, expiresAt: time.Now().Add(a.cacheTTL)})
	return actor, nil
}

// Forget drops the cached actor for openID (or every entry if empty) so role
// and active changes apply on the next request.
func (a *Authenticator) Forget(openID string) {
	if openID != "" {
		a.cache.Delete(openID)
		return
	}
	a.cache.Range(func(key, _ interface{}) bool {
		a.cache.Delete(key)
		return true
	})
}

func tokenFromRequest(c *gin.Context) (string, bool) {
	// Try cookie first, fallback to Authorization header
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, true
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate rejects requests without a valid token and stores the actor on the context.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		actor, err := a.Resolve(c.Request.Context(), tokenString)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
			return
		case errors.Is(err, ErrInvalidToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to resolve user"))
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		for _, role := range allowedRoles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

func SetActor(c *gin.Context, actor model.Actor) {
	c.Set(actorKey, actor)
}

func GetActor(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
