package employee

import "context"

// Repository は社員永続化の抽象です。
// Create と Delete は会社・部署の社員数カウンタを同一トランザクション内で再集計します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	// FindByUserID はユーザー ID から社員レコードを引きます。
	// 評価一覧の閲覧スコープ解決に使われます。
	FindByUserID(ctx context.Context, userID string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	CompanyID    string
	DepartmentID string
	Limit        int
	Offset       int
}
