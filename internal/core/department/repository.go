package department

import "context"

// Repository は部署永続化の抽象です。
// Create と Delete は親会社の部署数カウンタを同一トランザクション内で再集計します。
type Repository interface {
	Create(ctx context.Context, department *Department) (*Department, error)
	Update(ctx context.Context, department *Department) (*Department, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Department, error)
	List(ctx context.Context, filter ListDepartmentsFilter) ([]*Department, string, error)
}

// ListDepartmentsFilter は一覧取得用フィルタです。CompanyID が空なら全件が対象です。
type ListDepartmentsFilter struct {
	CompanyID string
	Limit     int
	Offset    int
}
