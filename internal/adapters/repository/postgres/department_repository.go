package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/department"
	pgdb "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
)

// DepartmentRepository は PostgreSQL を利用した部署永続化の実装です。
// 作成・削除時に親会社の部署数カウンタを同一トランザクション内で再集計します。
type DepartmentRepository struct {
	pool pgdb.Queryer
}

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(pool pgdb.Queryer) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// Create は部署を新規作成します。
func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO departments (company_id, name, created_at, updated_at)
            VALUES ($1, $2, $3, $4)
            RETURNING id, company_id, name, number_of_employees, number_of_projects, created_at, updated_at
        )
        SELECT i.id, i.company_id, i.name, i.number_of_employees, i.number_of_projects, i.created_at, i.updated_at,
               c.id, c.name
          FROM inserted i
          JOIN companies c ON c.id = i.company_id
    `, d.CompanyID, d.Name, d.CreatedAt, d.UpdatedAt)

	created, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}

	if err := r.recountCompanyDepartments(ctx, created.CompanyID); err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return created, nil
}

// Update は部署情報を更新します。
func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE departments
               SET name = $1,
                   updated_at = $2
             WHERE id = $3
            RETURNING id, company_id, name, number_of_employees, number_of_projects, created_at, updated_at
        )
        SELECT u.id, u.company_id, u.name, u.number_of_employees, u.number_of_projects, u.created_at, u.updated_at,
               c.id, c.name
          FROM updated u
          JOIN companies c ON c.id = u.company_id
    `, d.Name, d.UpdatedAt, d.ID)

	updated, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return updated, nil
}

// Delete は部署を削除します。
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `DELETE FROM departments WHERE id = $1 RETURNING company_id`, id)

	var companyID string
	if err := row.Scan(&companyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.ErrDepartmentNotFound
		}
		return translateDepartmentPgError(err)
	}

	return translateDepartmentPgError(r.recountCompanyDepartments(ctx, companyID))
}

// FindByID は ID で部署を取得します。
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT d.id, d.company_id, d.name, d.number_of_employees, d.number_of_projects, d.created_at, d.updated_at,
               c.id, c.name
          FROM departments d
          JOIN companies c ON c.id = d.company_id
         WHERE d.id = $1
         LIMIT 1
    `, id)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return found, nil
}

// List は部署の一覧を取得します。
func (r *DepartmentRepository) List(ctx context.Context, filter department.ListDepartmentsFilter) ([]*department.Department, string, error) {
	if filter.Limit <= 0 {
		return nil, "", department.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", department.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if strings.TrimSpace(filter.CompanyID) != "" {
		args = append(args, filter.CompanyID)
		whereClause = " WHERE d.company_id = $1"
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT d.id, d.company_id, d.name, d.number_of_employees, d.number_of_projects, d.created_at, d.updated_at,
               c.id, c.name
          FROM departments d
          JOIN companies c ON c.id = d.company_id` + whereClause + `
         ORDER BY d.created_at DESC, d.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateDepartmentPgError(err)
	}
	defer rows.Close()

	departments := make([]*department.Department, 0, filter.Limit)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, "", translateDepartmentPgError(err)
		}
		departments = append(departments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateDepartmentPgError(err)
	}

	var nextToken string
	if len(departments) == limitWithBuffer {
		departments = departments[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return departments, nextToken, nil
}

func (r *DepartmentRepository) recountCompanyDepartments(ctx context.Context, companyID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE companies
           SET number_of_departments = (SELECT COUNT(*) FROM departments WHERE company_id = $1)
         WHERE id = $1
    `, companyID)
	return err
}

func scanDepartment(row pgx.Row) (*department.Department, error) {
	var (
		id                   string
		companyID            string
		name                 string
		numEmployees         int
		numProjects          int
		createdAt, updatedAt time.Time
		companyJoinedID      string
		companyName          string
	)

	if err := row.Scan(
		&id,
		&companyID,
		&name,
		&numEmployees,
		&numProjects,
		&createdAt,
		&updatedAt,
		&companyJoinedID,
		&companyName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}

	return &department.Department{
		ID:                id,
		CompanyID:         companyID,
		Name:              name,
		NumberOfEmployees: numEmployees,
		NumberOfProjects:  numProjects,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Company: &department.CompanySnapshot{
			ID:   companyJoinedID,
			Name: companyName,
		},
	}, nil
}

func translateDepartmentPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return department.ErrDepartmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == foreignKeyViolationCode && pgErr.ConstraintName == "departments_company_id_fkey" {
			return department.ErrCompanyNotFound
		}
	}

	return err
}
