package project

import "time"

// Project はプロジェクトエンティティです。
type Project struct {
	ID                string
	CompanyID         string
	DepartmentID      *string
	Name              string
	Description       string
	StartDate         *time.Time
	EndDate           *time.Time
	IsActive          bool
	NumberOfEmployees int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Company           *CompanySnapshot
	Department        *DepartmentSnapshot
}

// CompanySnapshot はプロジェクトに紐づく会社情報のスナップショットです。
type CompanySnapshot struct {
	ID   string
	Name string
}

// DepartmentSnapshot はプロジェクトに紐づく部署情報のスナップショットです。
type DepartmentSnapshot struct {
	ID   string
	Name string
}

// Assignment はプロジェクトへの社員アサインです。(project, employee) の組は一意です。
type Assignment struct {
	ID         string
	ProjectID  string
	EmployeeID string
	AssignedAt time.Time
}
