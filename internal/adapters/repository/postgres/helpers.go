package postgres

import "time"

// PostgreSQL のエラーコード。pgconn.PgError の translate 時に参照します。
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// nullableDate は *time.Time を DATE 列向けの引数に変換します。
func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	u := t.UTC()
	date := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}

// nullableTimestamp は *time.Time を TIMESTAMPTZ 列向けの引数に変換します。
// 時刻部分は DATE 列と異なり切り捨てません。
func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}

func timePtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
