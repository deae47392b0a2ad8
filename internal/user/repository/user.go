package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leetlab/internal/common/cache"
	"leetlab/internal/common/db"
)

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	Image        *string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, tx db.Transaction, user *User) (int64, error)
	GetByID(ctx context.Context, tx db.Transaction, id int64) (*User, error)
	GetByEmail(ctx context.Context, tx db.Transaction, email string) (*User, error)
}

type MySQLUserRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewUserRepository(provider db.Provider, cacheClient cache.Cache) UserRepository {
	return NewUserRepositoryWithTTL(provider, cacheClient, defaultUserCacheTTL, defaultUserCacheEmptyTTL)
}

func NewUserRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl, emptyTTL time.Duration) UserRepository {
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}
	if emptyTTL <= 0 {
		emptyTTL = defaultUserCacheEmptyTTL
	}
	return &MySQLUserRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        ttl,
		emptyTTL:   emptyTTL,
	}
}

const userColumns = "id, name, email, image, password_hash, role, created_at, updated_at"

const (
	userInfoKeyPrefix  = "user:info:"
	userEmailKeyPrefix = "user:email:"

	defaultUserCacheTTL      = 30 * time.Minute
	defaultUserCacheEmptyTTL = 5 * time.Minute
)

func (r *MySQLUserRepository) Create(ctx context.Context, tx db.Transaction, user *User) (int64, error) {
	if user == nil {
		return 0, errors.New("user is nil")
	}

	role := user.Role
	if role == "" {
		role = UserRoleUser
	}
	image := sql.NullString{}
	if user.Image != nil {
		image = sql.NullString{String: *user.Image, Valid: true}
	}

	query := "INSERT INTO users (name, email, image, password_hash, role) VALUES (?, ?, ?, ?, ?)"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return 0, err
	}
	result, err := querier.Exec(ctx, query, user.Name, user.Email, image, user.PasswordHash, role)
	if err != nil {
		if key, ok := db.UniqueViolation(err); ok {
			if strings.Contains(strings.ToLower(key), "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	user.ID = id
	user.Role = role
	// a cached miss for this email must not outlive the insert
	r.deleteCache(ctx, 0, user.Email)
	return id, nil
}

func (r *MySQLUserRepository) GetByID(ctx context.Context, tx db.Transaction, id int64) (*User, error) {
	if r.cache != nil && tx == nil {
		return r.getCached(ctx, userInfoKey(id), func(ctx context.Context) (*User, error) {
			return r.getOneFromDB(ctx, nil, "id = ?", id)
		})
	}
	return r.getOneFromDB(ctx, tx, "id = ?", id)
}

func (r *MySQLUserRepository) GetByEmail(ctx context.Context, tx db.Transaction, email string) (*User, error) {
	if r.cache != nil && tx == nil {
		return r.getCached(ctx, userEmailKey(email), func(ctx context.Context) (*User, error) {
			return r.getOneFromDB(ctx, nil, "email = ?", email)
		})
	}
	return r.getOneFromDB(ctx, tx, "email = ?", email)
}

func (r *MySQLUserRepository) getCached(ctx context.Context, key string, load func(context.Context) (*User, error)) (*User, error) {
	user, err := cache.GetWithCached[*User](
		ctx,
		r.cache,
		key,
		cache.JitterTTL(r.ttl),
		cache.JitterTTL(r.emptyTTL),
		func(user *User) bool { return user == nil },
		marshalUser,
		unmarshalUser,
		func(ctx context.Context) (*User, error) {
			user, err := load(ctx)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					return nil, nil
				}
				return nil, err
			}
			return user, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *MySQLUserRepository) getOneFromDB(ctx context.Context, tx db.Transaction, where string, arg interface{}) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return nil, err
	}
	user, err := scanUser(querier.QueryRow(ctx, query, arg))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *MySQLUserRepository) deleteCache(ctx context.Context, userID int64, email string) {
	if r.cache == nil {
		return
	}
	keys := make([]string, 0, 2)
	if userID != 0 {
		keys = append(keys, userInfoKey(userID))
	}
	if email != "" {
		keys = append(keys, userEmailKey(email))
	}
	if len(keys) == 0 {
		return
	}
	_ = r.cache.Del(ctx, keys...)
}

func userInfoKey(id int64) string {
	return fmt.Sprintf("%s%d", userInfoKeyPrefix, id)
}

func userEmailKey(email string) string {
	return userEmailKeyPrefix + strings.ToLower(email)
}

func marshalUser(user *User) string {
	payload, err := json.Marshal(user)
	if err != nil {
		return ""
	}
	return string(payload)
}

func unmarshalUser(data string) (*User, error) {
	if data == "" {
		return nil, nil
	}
	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUser(scanner db.Scanner) (*User, error) {
	var user User
	var image sql.NullString

	err := scanner.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&image,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		user.Image = &image.String
	}
	return &user, nil
}
