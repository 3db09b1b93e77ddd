package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/company"
	pgdb "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
)

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create は会社を新規作成します。
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO companies (name, created_at, updated_at)
        VALUES ($1, $2, $3)
        RETURNING id, name, number_of_employees, number_of_departments, number_of_projects, created_at, updated_at
    `, c.Name, c.CreatedAt, c.UpdatedAt)

	created, err := scanCompany(row)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は会社情報を更新します。
func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE companies
           SET name = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING id, name, number_of_employees, number_of_departments, number_of_projects, created_at, updated_at
    `, c.Name, c.UpdatedAt, c.ID)

	updated, err := scanCompany(row)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は会社を削除します。
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, number_of_employees, number_of_departments, number_of_projects, created_at, updated_at
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCompany(row)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List は会社の一覧を取得します。
func (r *CompanyRepository) List(ctx context.Context, filter company.ListCompaniesFilter) ([]*company.Company, string, error) {
	if filter.Limit <= 0 {
		return nil, "", company.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", company.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name, number_of_employees, number_of_departments, number_of_projects, created_at, updated_at
          FROM companies
         ORDER BY created_at DESC, id DESC
         LIMIT $1
        OFFSET $2
    `, limitWithBuffer, filter.Offset)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	companies := make([]*company.Company, 0, filter.Limit)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, "", err
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(companies) == limitWithBuffer {
		companies = companies[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return companies, nextToken, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id                   string
		name                 string
		numEmployees         int
		numDepartments       int
		numProjects          int
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &numEmployees, &numDepartments, &numProjects, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	return &company.Company{
		ID:                  id,
		Name:                name,
		NumberOfEmployees:   numEmployees,
		NumberOfDepartments: numDepartments,
		NumberOfProjects:    numProjects,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}
