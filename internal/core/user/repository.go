package user

import "context"

// Repository はユーザー永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// TokenRepository は API トークン永続化の抽象です。
type TokenRepository interface {
	Create(ctx context.Context, token *Token) (*Token, error)
	FindByUserID(ctx context.Context, userID string) (*Token, error)
	// FindUserByKey はトークンキーから有効なユーザーを引きます。
	FindUserByKey(ctx context.Context, key string) (*User, error)
}
