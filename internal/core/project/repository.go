package project

import "context"

// Repository はプロジェクト永続化の抽象です。
// Create と Delete は親の会社・部署のプロジェクト数カウンタを、
// Assign はプロジェクトの社員数カウンタを同一トランザクション内で再集計します。
type Repository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, project *Project) (*Project, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter ListProjectsFilter) ([]*Project, string, error)
	Assign(ctx context.Context, assignment *Assignment) (*Assignment, error)
}

// ListProjectsFilter は一覧取得用フィルタです。
type ListProjectsFilter struct {
	CompanyID string
	Limit     int
	Offset    int
}
