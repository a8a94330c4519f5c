package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm/internal/model"
	"crm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeSyncer struct {
	calls int
	users map[string]*model.User
}

func (f *fakeSyncer) Sync(_ context.Context, id service.Identity) (*model.User, error) {
	f.calls++
	u, ok := f.users[id.OpenID]
	if !ok {
		return nil, service.ErrForbidden
	}
	return u, nil
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newRouter(a *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(a.Authenticate())
	r.GET("/me", func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.String(http.StatusOK, actor.Role)
	})
	r.GET("/admin", RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	rep := &model.User{ID: uuid.New(), OpenID: "rep", Role: model.RoleRepresentative}
	syncer := &fakeSyncer{users: map[string]*model.User{"rep": rep}}
	a := NewAuthenticator("secret", "", syncer)
	r := newRouter(a)

	valid := sign(t, "secret", jwt.MapClaims{"sub": "rep", "exp": time.Now().Add(time.Hour).Unix()})
	tests := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
	}{
		{"missing token", "/me", "", "", http.StatusUnauthorized},
		{"malformed header", "/me", "Token " + valid, "", http.StatusUnauthorized},
		{"bearer", "/me", "Bearer " + valid, "", http.StatusOK},
		{"cookie", "/me", "", valid, http.StatusOK},
		{"wrong secret", "/me", "Bearer " + sign(t, "other", jwt.MapClaims{"sub": "rep"}), "", http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + sign(t, "secret", jwt.MapClaims{"sub": "rep", "exp": time.Now().Add(-time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"no subject", "/me", "Bearer " + sign(t, "secret", jwt.MapClaims{"name": "x"}), "", http.StatusUnauthorized},
		{"unknown user", "/me", "Bearer " + sign(t, "secret", jwt.MapClaims{"sub": "ghost"}), "", http.StatusForbidden},
		{"role guard", "/admin", "Bearer " + valid, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestResolveCachesActor(t *testing.T) {
	admin := &model.User{ID: uuid.New(), OpenID: "boss", Role: model.RoleAdmin}
	syncer := &fakeSyncer{users: map[string]*model.User{"boss": admin}}
	a := NewAuthenticator("secret", "crm-idp", syncer)
	token := sign(t, "secret", jwt.MapClaims{"sub": "boss", "iss": "crm-idp"})

	for i := 0; i < 3; i++ {
		actor, err := a.Resolve(context.Background(), token)
		if err != nil || actor.ID != admin.ID || !actor.IsAdmin() {
			t.Fatalf("resolve: %+v (%v)", actor, err)
		}
	}
	if syncer.calls != 1 {
		t.Fatalf("expected one sync, got %d", syncer.calls)
	}

	a.Forget("boss")
	if _, err := a.Resolve(context.Background(), token); err != nil {
		t.Fatalf("resolve after forget: %v", err)
	}
	if syncer.calls != 2 {
		t.Fatalf("forget must force a new sync, got %d calls", syncer.calls)
	}

	other := sign(t, "secret", jwt.MapClaims{"sub": "boss", "iss": "someone-else"})
	if _, err := a.Resolve(context.Background(), other); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}
