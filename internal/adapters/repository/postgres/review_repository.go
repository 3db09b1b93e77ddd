package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/review"
	pgdb "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
)

// ReviewRepository は PostgreSQL を利用した人事評価永続化の実装です。
type ReviewRepository struct {
	pool pgdb.Queryer
}

// NewReviewRepository は ReviewRepository を生成します。
func NewReviewRepository(pool pgdb.Queryer) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewSelectColumns = `
        r.id, r.employee_id, r.stage, r.scheduled_date, r.feedback, r.created_at, r.updated_at,
        e.id, e.first_name, e.last_name, e.email`

// Create は人事評価を新規作成します。
func (r *ReviewRepository) Create(ctx context.Context, rv *review.PerformanceReview) (*review.PerformanceReview, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO performance_reviews (employee_id, stage, scheduled_date, feedback, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, employee_id, stage, scheduled_date, feedback, created_at, updated_at
        )
        SELECT i.id, i.employee_id, i.stage, i.scheduled_date, i.feedback, i.created_at, i.updated_at,
               e.id, e.first_name, e.last_name, e.email
          FROM inserted i
          JOIN employees e ON e.id = i.employee_id
    `,
		rv.EmployeeID,
		string(rv.Stage),
		nullableTimestamp(rv.ScheduledDate),
		rv.Feedback,
		rv.CreatedAt,
		rv.UpdatedAt,
	)

	created, err := scanReview(row)
	if err != nil {
		return nil, translateReviewPgError(err)
	}
	return created, nil
}

// Update は評価の予定日とフィードバックを更新します。stage には触れません。
func (r *ReviewRepository) Update(ctx context.Context, rv *review.PerformanceReview) (*review.PerformanceReview, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE performance_reviews
               SET scheduled_date = $1,
                   feedback = $2,
                   updated_at = $3
             WHERE id = $4
            RETURNING id, employee_id, stage, scheduled_date, feedback, created_at, updated_at
        )
        SELECT u.id, u.employee_id, u.stage, u.scheduled_date, u.feedback, u.created_at, u.updated_at,
               e.id, e.first_name, e.last_name, e.email
          FROM updated u
          JOIN employees e ON e.id = u.employee_id
    `,
		nullableTimestamp(rv.ScheduledDate),
		rv.Feedback,
		rv.UpdatedAt,
		rv.ID,
	)

	updated, err := scanReview(row)
	if err != nil {
		return nil, translateReviewPgError(err)
	}
	return updated, nil
}

// Delete は人事評価を削除します。
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM performance_reviews WHERE id = $1`, id)
	if err != nil {
		return translateReviewPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// FindByID は ID で人事評価を取得します。
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*review.PerformanceReview, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+reviewSelectColumns+`
          FROM performance_reviews r
          JOIN employees e ON e.id = r.employee_id
         WHERE r.id = $1
         LIMIT 1
    `, id)

	found, err := scanReview(row)
	if err != nil {
		return nil, translateReviewPgError(err)
	}
	return found, nil
}

// FindByIDForUpdate は行ロック付きで人事評価を取得します。
// ステージ遷移の read-modify-write をトランザクション内で直列化するために使います。
func (r *ReviewRepository) FindByIDForUpdate(ctx context.Context, id string) (*review.PerformanceReview, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+reviewSelectColumns+`
          FROM performance_reviews r
          JOIN employees e ON e.id = r.employee_id
         WHERE r.id = $1
         LIMIT 1
           FOR UPDATE OF r
    `, id)

	found, err := scanReview(row)
	if err != nil {
		return nil, translateReviewPgError(err)
	}
	return found, nil
}

// UpdateStage は stage と updated_at のみを書き込みます。
func (r *ReviewRepository) UpdateStage(ctx context.Context, rv *review.PerformanceReview) (*review.PerformanceReview, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE performance_reviews
               SET stage = $1,
                   updated_at = $2
             WHERE id = $3
            RETURNING id, employee_id, stage, scheduled_date, feedback, created_at, updated_at
        )
        SELECT u.id, u.employee_id, u.stage, u.scheduled_date, u.feedback, u.created_at, u.updated_at,
               e.id, e.first_name, e.last_name, e.email
          FROM updated u
          JOIN employees e ON e.id = u.employee_id
    `, string(rv.Stage), rv.UpdatedAt, rv.ID)

	updated, err := scanReview(row)
	if err != nil {
		return nil, translateReviewPgError(err)
	}
	return updated, nil
}

// List は人事評価の一覧を取得します。
func (r *ReviewRepository) List(ctx context.Context, filter review.ListReviewsFilter) ([]*review.PerformanceReview, string, error) {
	if filter.Limit <= 0 {
		return nil, "", review.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", review.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if strings.TrimSpace(filter.EmployeeID) != "" {
		args = append(args, filter.EmployeeID)
		whereClause = " WHERE r.employee_id = $1"
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + reviewSelectColumns + `
          FROM performance_reviews r
          JOIN employees e ON e.id = r.employee_id` + whereClause + `
         ORDER BY r.created_at DESC, r.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateReviewPgError(err)
	}
	defer rows.Close()

	reviews := make([]*review.PerformanceReview, 0, filter.Limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, "", translateReviewPgError(err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateReviewPgError(err)
	}

	var nextToken string
	if len(reviews) == limitWithBuffer {
		reviews = reviews[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return reviews, nextToken, nil
}

func scanReview(row pgx.Row) (*review.PerformanceReview, error) {
	var (
		id                   string
		employeeID           string
		stage                string
		scheduledDate        sql.NullTime
		feedback             string
		createdAt, updatedAt time.Time
		empJoinedID          string
		empFirstName         string
		empLastName          string
		empEmail             string
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&stage,
		&scheduledDate,
		&feedback,
		&createdAt,
		&updatedAt,
		&empJoinedID,
		&empFirstName,
		&empLastName,
		&empEmail,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrReviewNotFound
		}
		return nil, err
	}

	rv := &review.PerformanceReview{
		ID:         id,
		EmployeeID: employeeID,
		Stage:      review.Stage(stage),
		Feedback:   feedback,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		Employee: &review.EmployeeSnapshot{
			ID:        empJoinedID,
			FirstName: empFirstName,
			LastName:  empLastName,
			Email:     empEmail,
		},
	}

	if scheduledDate.Valid {
		rv.ScheduledDate = timePtr(scheduledDate.Time)
	}

	return rv, nil
}

func translateReviewPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return review.ErrReviewNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "performance_reviews_employee_id_fkey" {
				return review.ErrEmployeeNotFound
			}
			return err
		case checkViolationCode:
			return review.ErrUnknownStage
		}
	}

	return err
}
