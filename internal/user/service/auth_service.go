package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"leetlab/internal/common/cache"
	"leetlab/internal/user/repository"
	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL       = 7 * 24 * time.Hour
	defaultLoginFailTTL   = 15 * time.Minute
	defaultLoginFailLimit = 5
)

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	JWTSecret      []byte
	JWTIssuer      string
	TokenTTL       time.Duration
	LoginFailTTL   time.Duration
	LoginFailLimit int
}

// AuthService handles user authentication flows.
type AuthService struct {
	users          repository.UserRepository
	blacklist      repository.TokenBlacklistRepository
	loginFailCache cache.BasicOps
	config         AuthServiceConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	blacklist repository.TokenBlacklistRepository,
	loginFailCache cache.BasicOps,
	cfg AuthServiceConfig,
) *AuthService {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.LoginFailTTL == 0 {
		cfg.LoginFailTTL = defaultLoginFailTTL
	}
	if cfg.LoginFailLimit == 0 {
		cfg.LoginFailLimit = defaultLoginFailLimit
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "leetlab"
	}

	return &AuthService{
		users:          users,
		blacklist:      blacklist,
		loginFailCache: loginFailCache,
		config:         cfg,
	}
}

// RegisterInput represents input for user registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput represents input for user login.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// UserInfo represents basic user info for auth responses.
type UserInfo struct {
	ID    int64
	Name  string
	Email string
	Role  repository.UserRole
	Image *string
}

// AuthResult represents the result of register and login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserInfo
}

// Register creates a new user and issues a session token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := normalizeEmail(input.Email)
	if err := validateName(input.Name); err != nil {
		return AuthResult{}, err
	}
	if err := validateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
	}

	user := &repository.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         repository.UserRoleUser,
	}
	userID, err := s.users.Create(ctx, nil, user)
	if err != nil {
		return AuthResult{}, mapUserCreateError(err)
	}
	user.ID = userID

	logger.Info(ctx, "user registered", zap.Int64("user_id", user.ID))
	return s.issueToken(user)
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if err := validateLoginPassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	if err := s.checkLoginLimit(ctx, email, input.IP); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			s.recordLoginFailure(ctx, email, input.IP)
			return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
		}
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("get user failed: %w", err), pkgerrors.DatabaseError)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordLoginFailure(ctx, email, input.IP)
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}

	s.clearLoginFailure(ctx, email, input.IP)
	return s.issueToken(user)
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := s.parseToken(raw)
	if err != nil {
		return err
	}
	if s.blacklist == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		return pkgerrors.Wrap(fmt.Errorf("blacklist token failed: %w", err), pkgerrors.CacheError)
	}
	return nil
}

// Authenticate validates a token and loads the user it was issued to.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (UserInfo, error) {
	claims, err := s.parseToken(raw)
	if err != nil {
		return UserInfo{}, err
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return UserInfo{}, err
	}
	if s.blacklist != nil {
		blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return UserInfo{}, pkgerrors.Wrap(err, pkgerrors.ServiceUnavailable)
		}
		if blacklisted {
			return UserInfo{}, pkgerrors.New(pkgerrors.TokenInvalid)
		}
	}
	return s.Check(ctx, userID)
}

// Check returns the current user's profile.
func (s *AuthService) Check(ctx context.Context, userID int64) (UserInfo, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return UserInfo{}, pkgerrors.New(pkgerrors.UserNotFound)
		}
		return UserInfo{}, pkgerrors.Wrap(fmt.Errorf("get user failed: %w", err), pkgerrors.DatabaseError)
	}
	return toUserInfo(user), nil
}

func (s *AuthService) issueToken(user *repository.User) (AuthResult, error) {
	token, expiresAt, err := s.generateToken(user.ID, string(user.Role), s.config.TokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserInfo(user),
	}, nil
}

func toUserInfo(user *repository.User) UserInfo {
	return UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Image: user.Image,
	}
}

func mapUserCreateError(err error) error {
	if stderrors.Is(err, repository.ErrEmailExists) {
		return pkgerrors.New(pkgerrors.EmailAlreadyExists)
	}
	if stderrors.Is(err, repository.ErrDuplicate) {
		return pkgerrors.New(pkgerrors.RecordAlreadyExists)
	}
	return pkgerrors.Wrap(fmt.Errorf("create user failed: %w", err), pkgerrors.DatabaseError)
}
