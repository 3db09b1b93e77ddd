package review

import "context"

// Repository は人事評価永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, review *PerformanceReview) (*PerformanceReview, error)
	Update(ctx context.Context, review *PerformanceReview) (*PerformanceReview, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*PerformanceReview, error)
	// FindByIDForUpdate は行ロックを取得して評価を読み込みます。
	// ステージ遷移の read-modify-write を単一書き込み者に直列化するために使います。
	FindByIDForUpdate(ctx context.Context, id string) (*PerformanceReview, error)
	// UpdateStage は stage と updated_at のみを書き込みます。
	UpdateStage(ctx context.Context, review *PerformanceReview) (*PerformanceReview, error)
	List(ctx context.Context, filter ListReviewsFilter) ([]*PerformanceReview, string, error)
}

// ListReviewsFilter は一覧取得用フィルタです。EmployeeID が空なら全件が対象です。
type ListReviewsFilter struct {
	EmployeeID string
	Limit      int
	Offset     int
}
