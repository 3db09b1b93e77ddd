package project

import "errors"

var (
	// ErrProjectNotFound はプロジェクトが存在しない場合に返却されます。
	ErrProjectNotFound = errors.New("project not found")
	// ErrCompanyNotFound は紐づく会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("project: company not found")
	// ErrDepartmentNotFound は紐づく部署が存在しない場合に返却されます。
	ErrDepartmentNotFound = errors.New("project: department not found")
	// ErrEmployeeNotFound はアサイン対象の社員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("project: employee not found")
	// ErrAlreadyAssigned は同一社員の重複アサイン時に返却されます。
	ErrAlreadyAssigned = errors.New("employee is already assigned to this project")
	// ErrInvalidName はプロジェクト名が不正な場合に返却されます。
	ErrInvalidName = errors.New("project: invalid name")
	// ErrInvalidCompanyID は会社 ID が不正な場合に返却されます。
	ErrInvalidCompanyID = errors.New("project: invalid company id")
	// ErrInvalidEmployeeID は社員 ID が不正な場合に返却されます。
	ErrInvalidEmployeeID = errors.New("project: invalid employee id")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("project: invalid id")
	// ErrInvalidDateRange は終了日が開始日より前の場合に返却されます。
	ErrInvalidDateRange = errors.New("project: end date before start date")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("project: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("project: invalid page token")
)
