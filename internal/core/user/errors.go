package user

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound はトークンが存在しない場合に返却されます。
	ErrTokenNotFound = errors.New("token not found")
	// ErrEmailAlreadyExists はメールアドレスまたはユーザー名の重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("email or username already exists")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidUsername はユーザー名が不正な場合に返却されます。
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword はパスワードが要件を満たさない場合に返却されます。
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidRole はロールが不正な場合に返却されます。
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials は認証情報が一致しない場合に返却されます。
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
)
