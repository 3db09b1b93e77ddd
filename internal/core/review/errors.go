package review

import (
	"errors"
	"fmt"
)

var (
	// ErrReviewNotFound は評価が存在しない場合に返却されます。
	ErrReviewNotFound = errors.New("performance review not found")
	// ErrEmployeeNotFound は評価対象の社員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("review: employee not found")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("review: invalid id")
	// ErrInvalidEmployeeID は社員 ID が不正な場合に返却されます。
	ErrInvalidEmployeeID = errors.New("review: invalid employee id")
	// ErrStageRequired はステージが指定されていない場合に返却されます。
	ErrStageRequired = errors.New("stage field is required")
	// ErrUnknownStage はステージ列挙に存在しない値が指定された場合に返却されます。
	// 遷移表の判定より前に検出され、遷移不正 (InvalidTransitionError) とは区別されます。
	ErrUnknownStage = errors.New("stage does not exist")
	// ErrPermissionDenied は呼び出しロールに権限がない場合に返却されます。
	ErrPermissionDenied = errors.New("review: permission denied")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("review: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("review: invalid page token")
)

// InvalidTransitionError は遷移表で許可されていないステージ変更を表します。
// 遷移元と遷移先の両方を保持し、クライアント向けメッセージの組み立てに使われます。
type InvalidTransitionError struct {
	From Stage
	To   Stage
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("review: invalid transition from %s to %s", e.From, e.To)
}
