package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// PasswordHasher はパスワードのハッシュ化と照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type bcryptHasher struct{}

func (bcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("user: hash password: %w", err)
	}
	return string(hashed), nil
}

func (bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// KeyGenerator は API トークンのキーを生成します。
type KeyGenerator interface {
	NewKey() string
}

type uuidKeyGenerator struct{}

func (uuidKeyGenerator) NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
}

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service はユーザー登録・ログイン・トークン認証のユースケースをまとめます。
type Service struct {
	repo   Repository
	tokens TokenRepository
	clock  Clock
	tx     TransactionManager
	hasher PasswordHasher
	keys   KeyGenerator
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, in LoginInput) (*Token, error)
	Authenticate(ctx context.Context, key string) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tokens TokenRepository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		clock:  clock,
		tx:     tx,
		hasher: bcryptHasher{},
		keys:   uuidKeyGenerator{},
	}
}

// WithPasswordHasher はパスワードハッシュ実装を差し替えます。
func (s *Service) WithPasswordHasher(hasher PasswordHasher) *Service {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithKeyGenerator はトークンキー生成を差し替えます。
func (s *Service) WithKeyGenerator(keys KeyGenerator) *Service {
	if keys != nil {
		s.keys = keys
	}
	return s
}

// RegisterInput はユーザー登録時の入力です。
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     *Role
}

// LoginInput はログイン時の入力です。
type LoginInput struct {
	Email    string
	Password string
}

// ParseRole は文字列をロールへ変換します。
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleEmployee:
		return RoleEmployee, nil
	default:
		return "", ErrInvalidRole
	}
}

// Register は新しいユーザーを作成します。ロール未指定時は employee になります。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	if len(in.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	role := RoleEmployee
	if in.Role != nil {
		parsed, err := ParseRole(string(*in.Role))
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var created *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, &User{
			Email:        email,
			Username:     username,
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			DateJoined:   s.clock.Now(),
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// Login は認証情報を検証し、既存トークンの返却または新規発行を行います。
func (s *Service) Login(ctx context.Context, in LoginInput) (*Token, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var token *Token
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByEmail(txCtx, email)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}

		if !found.IsActive {
			return ErrInvalidCredentials
		}

		if err := s.hasher.Compare(found.PasswordHash, in.Password); err != nil {
			return ErrInvalidCredentials
		}

		existing, err := s.tokens.FindByUserID(txCtx, found.ID)
		if err == nil {
			token = existing
			return nil
		}
		if !errors.Is(err, ErrTokenNotFound) {
			return err
		}

		issued, err := s.tokens.Create(txCtx, &Token{
			Key:       s.keys.NewKey(),
			UserID:    found.ID,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return err
		}

		token = issued
		return nil
	}); err != nil {
		return nil, err
	}

	return token, nil
}

// Authenticate はトークンキーからユーザーを解決します。
func (s *Service) Authenticate(ctx context.Context, key string) (*User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrTokenNotFound
	}

	var result *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.tokens.FindUserByKey(txCtx, key)
		if err != nil {
			return err
		}
		if !found.IsActive {
			return ErrTokenNotFound
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}
