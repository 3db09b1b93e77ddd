package company

import "errors"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company not found")
	// ErrInvalidName は会社名が不正な場合に返却されます。
	ErrInvalidName = errors.New("company: invalid name")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("company: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("company: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("company: invalid page token")
)
