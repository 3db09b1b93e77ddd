package department

import "time"

// Department は部署エンティティです。
type Department struct {
	ID                string
	CompanyID         string
	Name              string
	NumberOfEmployees int
	NumberOfProjects  int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Company           *CompanySnapshot
}

// CompanySnapshot は部署に紐づく会社情報のスナップショットです。
type CompanySnapshot struct {
	ID   string
	Name string
}
