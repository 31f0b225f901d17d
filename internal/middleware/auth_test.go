package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/requestdata"
	"github.com/stitchfade/boutique-backend/internal/types"
)

// stubAuthService resolves a single known token to a fixed user.
type stubAuthService struct {
	validToken string
	userID     uuid.UUID
}

func (s *stubAuthService) RegisterUser(ctx context.Context, user *types.User, confirmPassword string) error {
	return nil
}

func (s *stubAuthService) LoginUser(ctx context.Context, username, password string) (string, string, error) {
	return "", "", nil
}

func (s *stubAuthService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	return "", "", nil
}

func (s *stubAuthService) LogoutUser(ctx context.Context) error { return nil }

func (s *stubAuthService) LogoutAllUser(ctx context.Context) error { return nil }

func (s *stubAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString != s.validToken {
		return ctx, apierr.Unauthenticated(nil)
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      s.userID,
	}), nil
}

func (s *stubAuthService) GetAccessTTL() time.Duration { return time.Hour }

func newTestRouter(t *testing.T) (*gin.Engine, *stubAuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	stub := &stubAuthService{validToken: "good-token", userID: uuid.New()}
	am := NewAuthMiddleware(log, stub)

	r := gin.New()
	r.GET("/api", am.RequireAuth(), func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String()})
	})
	r.GET("/page", am.RequireAuthOrRedirect("/login"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, stub
}

func TestRequireAuth(t *testing.T) {
	r, stub := newTestRouter(t)

	cases := []struct {
		name       string
		target     string
		authHeader string
		wantStatus int
	}{
		{"no_token", "/api", "", http.StatusUnauthorized},
		{"bad_token", "/api", "Bearer wrong", http.StatusUnauthorized},
		{"bearer_header", "/api", "Bearer good-token", http.StatusOK},
		{"query_token", "/api?token=good-token", "", http.StatusOK},
		{"malformed_header", "/api", "good-token", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus == http.StatusOK && !strings.Contains(w.Body.String(), stub.userID.String()) {
				t.Fatalf("handler should see the resolved user, body %s", w.Body.String())
			}
		})
	}
}

func TestRequireAuthOrRedirect(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q, want /login", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
