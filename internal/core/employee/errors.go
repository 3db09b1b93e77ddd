package employee

import "errors"

var (
	// ErrEmployeeNotFound は社員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrCompanyNotFound は紐づく会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("employee: company not found")
	// ErrDepartmentNotFound は紐づく部署が存在しない場合に返却されます。
	ErrDepartmentNotFound = errors.New("employee: department not found")
	// ErrUserNotFound は紐づくユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("employee: user not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("employee: email or user already registered")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("employee: invalid id")
	// ErrInvalidCompanyID は会社 ID が不正な場合に返却されます。
	ErrInvalidCompanyID = errors.New("employee: invalid company id")
	// ErrInvalidDepartmentID は部署 ID が不正な場合に返却されます。
	ErrInvalidDepartmentID = errors.New("employee: invalid department id")
	// ErrInvalidUserID はユーザー ID が不正な場合に返却されます。
	ErrInvalidUserID = errors.New("employee: invalid user id")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("employee: invalid email")
	// ErrInvalidName は氏名が不正な場合に返却されます。
	ErrInvalidName = errors.New("employee: invalid name")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("employee: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("employee: invalid page token")
)
