package employee

import "time"

// Employee は社員エンティティです。
type Employee struct {
	ID           string
	CompanyID    string
	DepartmentID string
	UserID       string
	FirstName    string
	MiddleName   string
	LastName     string
	Email        string
	MobileNumber string
	Address      string
	Position     string
	HiredOn      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Company      *CompanySnapshot
	Department   *DepartmentSnapshot
}

// CompanySnapshot は社員に紐づく会社情報のスナップショットです。
type CompanySnapshot struct {
	ID   string
	Name string
}

// DepartmentSnapshot は社員に紐づく部署情報のスナップショットです。
type DepartmentSnapshot struct {
	ID   string
	Name string
}

// DaysEmployed は入社からの経過日数を返します。未入社 (HiredOn 未設定) の場合は nil です。
func (e *Employee) DaysEmployed(now time.Time) *int {
	if e.HiredOn == nil {
		return nil
	}
	days := int(now.Sub(*e.HiredOn).Hours() / 24)
	return &days
}
