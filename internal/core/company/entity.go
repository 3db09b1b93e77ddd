package company

import "time"

// Company は会社エンティティです。
// 件数カウンタは子レコードの作成・削除時に永続化層で再集計される非正規化値です。
type Company struct {
	ID                  string
	Name                string
	NumberOfEmployees   int
	NumberOfDepartments int
	NumberOfProjects    int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
