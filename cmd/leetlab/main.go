package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leetlab/internal/common/cache"
	"leetlab/internal/common/db"
	"leetlab/internal/common/http/middleware"
	"leetlab/internal/judge0"
	problemctl "leetlab/internal/problem/controller"
	problemrepo "leetlab/internal/problem/repository"
	problemsvc "leetlab/internal/problem/service"
	submissionctl "leetlab/internal/submission/controller"
	submissionrepo "leetlab/internal/submission/repository"
	submissionsvc "leetlab/internal/submission/service"
	userctl "leetlab/internal/user/controller"
	userrepo "leetlab/internal/user/repository"
	usersvc "leetlab/internal/user/service"
	"leetlab/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/leetlab.yaml"

type services struct {
	auth       *usersvc.AuthService
	problem    *problemsvc.ProblemService
	submission *submissionsvc.SubmissionService
	cookie     userctl.CookieConfig
	limiter    *middleware.RateLimiter
	rateLimit  RateLimitConfig
	ready      func(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	mysqlDB, err := db.NewMySQLWithConfig(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init database failed", zap.Error(err))
		return
	}
	defer func() { _ = mysqlDB.Close() }()
	dbProvider := db.NewManager(mysqlDB)

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() { _ = redisCache.Close() }()

	grader := judge0.NewGrader(judge0.NewClient(appCfg.Judge0), appCfg.Judge0.Poll, nil)

	userRepo := userrepo.NewUserRepository(dbProvider, redisCache)
	blacklistRepo := userrepo.NewTokenBlacklistRepository(redisCache, appCfg.Auth.BlacklistTimeout)
	problemRepo := problemrepo.NewProblemRepository(dbProvider, redisCache)
	submissionRepo := submissionrepo.NewSubmissionRepository(dbProvider)

	authService := usersvc.NewAuthService(userRepo, blacklistRepo, redisCache, usersvc.AuthServiceConfig{
		JWTSecret:      []byte(appCfg.Auth.JWTSecret),
		JWTIssuer:      appCfg.Auth.JWTIssuer,
		TokenTTL:       appCfg.Auth.TokenTTL,
		LoginFailTTL:   appCfg.Auth.LoginFailTTL,
		LoginFailLimit: appCfg.Auth.LoginFailLimit,
	})
	problemService := problemsvc.NewProblemService(problemRepo, problemsvc.NewReferenceValidator(grader))
	submissionService := submissionsvc.NewSubmissionService(submissionRepo, problemService, grader, appCfg.Submission.MaxCodeBytes)

	httpServer := buildHTTPServer(appCfg.Server, services{
		auth:       authService,
		problem:    problemService,
		submission: submissionService,
		cookie:     userctl.CookieConfig{Secure: appCfg.Auth.CookieSecure, Domain: appCfg.Auth.CookieDomain},
		limiter:    middleware.NewRateLimiter(redisCache, appCfg.Redis.ReadTimeout),
		rateLimit:  appCfg.RateLimit,
		ready: func(ctx context.Context) error {
			if err := mysqlDB.Ping(ctx); err != nil {
				return err
			}
			return redisCache.Ping(ctx)
		},
	})

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "leetlab http server started",
			zap.String("addr", appCfg.Server.Addr),
			zap.String("judge0", appCfg.Judge0.BaseURL),
		)
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg ServerConfig, svc services) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      buildRouter(svc),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func buildRouter(svc services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceContextMiddleware())
	router.Use(requestLogger())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if svc.ready != nil {
			if err := svc.ready(ctx); err != nil {
				c.Status(http.StatusServiceUnavailable)
				return
			}
		}
		c.Status(http.StatusOK)
	})

	authenticator := principalFromAuth(svc.auth)
	requireUser := middleware.AuthMiddleware(authenticator, middleware.AuthPolicy{})
	requireAdmin := middleware.AuthMiddleware(authenticator, middleware.AuthPolicy{Roles: []string{string(userrepo.UserRoleAdmin)}})

	api := router.Group("/api/v1")

	authLimit := middleware.RateLimitMiddleware(svc.limiter, "auth", svc.rateLimit.Auth)
	problemWriteLimit := middleware.RateLimitMiddleware(svc.limiter, "problem-write", svc.rateLimit.ProblemWrite)
	submissionLimit := middleware.RateLimitMiddleware(svc.limiter, "submission", svc.rateLimit.Submission)

	authController := userctl.NewAuthController(svc.auth, svc.cookie)
	auth := api.Group("/auth")
	auth.POST("/register", authLimit, authController.Register)
	auth.POST("/login", authLimit, authController.Login)
	auth.POST("/logout", requireUser, authController.Logout)
	auth.GET("/check", requireUser, authController.Check)

	problemController := problemctl.NewProblemController(svc.problem)
	problems := api.Group("/problems")
	problems.POST("", requireAdmin, problemWriteLimit, problemController.Create)
	problems.GET("", requireUser, problemController.List)
	problems.GET("/solved", requireUser, problemController.Solved)
	problems.GET("/:id", requireUser, problemController.Get)
	problems.PUT("/:id", requireAdmin, problemWriteLimit, problemController.Update)
	problems.DELETE("/:id", requireAdmin, problemController.Delete)

	submissionController := submissionctl.NewSubmissionController(svc.submission)
	submissions := api.Group("/submissions")
	submissions.POST("/problems/:id", requireUser, submissionLimit, submissionController.Submit)
	submissions.GET("", requireUser, submissionController.List)

	return router
}

// principalFromAuth adapts the auth service to the middleware's Authenticator.
func principalFromAuth(auth *usersvc.AuthService) middleware.Authenticator {
	if auth == nil {
		return nil
	}
	return middleware.AuthenticatorFunc(func(ctx context.Context, raw string) (middleware.Principal, error) {
		info, err := auth.Authenticate(ctx, raw)
		if err != nil {
			return middleware.Principal{}, err
		}
		return middleware.Principal{ID: info.ID, Role: string(info.Role)}, nil
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
