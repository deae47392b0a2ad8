package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	usersvc "leetlab/internal/user/service"

	"github.com/gin-gonic/gin"
)

func newTestRouter(ready func(ctx context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := usersvc.NewAuthService(nil, nil, nil, usersvc.AuthServiceConfig{JWTSecret: []byte("secret")})
	return buildRouter(services{auth: auth, ready: ready})
}

func TestRouterProbesAndAuth(t *testing.T) {
	cases := []struct {
		name       string
		method     string
		path       string
		token      string
		ready      func(ctx context.Context) error
		wantStatus int
	}{
		{name: "liveness", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "ready", method: http.MethodGet, path: "/readyz", ready: func(ctx context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "not ready", method: http.MethodGet, path: "/readyz", ready: func(ctx context.Context) error { return errors.New("down") }, wantStatus: http.StatusServiceUnavailable},
		{name: "problems need token", method: http.MethodGet, path: "/api/v1/problems", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodPost, path: "/api/v1/problems", token: "garbage", wantStatus: http.StatusUnauthorized},
		{name: "submissions need token", method: http.MethodPost, path: "/api/v1/submissions/problems/1", wantStatus: http.StatusUnauthorized},
		{name: "check needs token", method: http.MethodGet, path: "/api/v1/auth/check", wantStatus: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			newTestRouter(tc.ready).ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestTraceIDHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Fatalf("expected trace id header")
	}
}
