package review

import "time"

// PerformanceReview は人事評価エンティティです。
// Stage はステージ遷移操作 (ChangeStage) を通じてのみ変更されます。
type PerformanceReview struct {
	ID            string
	EmployeeID    string
	Stage         Stage
	ScheduledDate *time.Time
	Feedback      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Employee      *EmployeeSnapshot
}

// EmployeeSnapshot は評価対象社員のスナップショットです。
type EmployeeSnapshot struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}
