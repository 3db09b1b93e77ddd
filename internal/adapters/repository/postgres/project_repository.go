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
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/project"
	pgdb "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
)

// ProjectRepository は PostgreSQL を利用したプロジェクト永続化の実装です。
// 作成・削除時に親会社・部署のプロジェクト数カウンタを、
// アサイン時にプロジェクトの社員数カウンタを同一トランザクション内で再集計します。
type ProjectRepository struct {
	pool pgdb.Queryer
}

// NewProjectRepository は ProjectRepository を生成します。
func NewProjectRepository(pool pgdb.Queryer) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// Create はプロジェクトを新規作成します。
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO projects (company_id, department_id, name, description, start_date, end_date, is_active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            RETURNING id, company_id, department_id, name, description, start_date, end_date, is_active, number_of_employees, created_at, updated_at
        )
        SELECT i.id, i.company_id, i.department_id, i.name, i.description, i.start_date, i.end_date, i.is_active, i.number_of_employees, i.created_at, i.updated_at,
               c.id, c.name, d.id, d.name
          FROM inserted i
          JOIN companies c ON c.id = i.company_id
          LEFT JOIN departments d ON d.id = i.department_id
    `,
		p.CompanyID,
		p.DepartmentID,
		p.Name,
		p.Description,
		nullableDate(p.StartDate),
		nullableDate(p.EndDate),
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)

	created, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}

	if err := r.recountParentProjects(ctx, created.CompanyID, created.DepartmentID); err != nil {
		return nil, translateProjectPgError(err)
	}
	return created, nil
}

// Update はプロジェクト情報を更新します。
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE projects
               SET department_id = $1,
                   name = $2,
                   description = $3,
                   start_date = $4,
                   end_date = $5,
                   is_active = $6,
                   updated_at = $7
             WHERE id = $8
            RETURNING id, company_id, department_id, name, description, start_date, end_date, is_active, number_of_employees, created_at, updated_at
        )
        SELECT u.id, u.company_id, u.department_id, u.name, u.description, u.start_date, u.end_date, u.is_active, u.number_of_employees, u.created_at, u.updated_at,
               c.id, c.name, d.id, d.name
          FROM updated u
          JOIN companies c ON c.id = u.company_id
          LEFT JOIN departments d ON d.id = u.department_id
    `,
		p.DepartmentID,
		p.Name,
		p.Description,
		nullableDate(p.StartDate),
		nullableDate(p.EndDate),
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)

	updated, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return updated, nil
}

// Delete はプロジェクトを削除します。
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING company_id, department_id`, id)

	var (
		companyID    string
		departmentID sql.NullString
	)
	if err := row.Scan(&companyID, &departmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.ErrProjectNotFound
		}
		return translateProjectPgError(err)
	}

	var departmentPtr *string
	if departmentID.Valid {
		departmentPtr = &departmentID.String
	}
	return translateProjectPgError(r.recountParentProjects(ctx, companyID, departmentPtr))
}

// FindByID は ID でプロジェクトを取得します。
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT p.id, p.company_id, p.department_id, p.name, p.description, p.start_date, p.end_date, p.is_active, p.number_of_employees, p.created_at, p.updated_at,
               c.id, c.name, d.id, d.name
          FROM projects p
          JOIN companies c ON c.id = p.company_id
          LEFT JOIN departments d ON d.id = p.department_id
         WHERE p.id = $1
         LIMIT 1
    `, id)

	found, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return found, nil
}

// List はプロジェクトの一覧を取得します。
func (r *ProjectRepository) List(ctx context.Context, filter project.ListProjectsFilter) ([]*project.Project, string, error) {
	if filter.Limit <= 0 {
		return nil, "", project.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", project.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if strings.TrimSpace(filter.CompanyID) != "" {
		args = append(args, filter.CompanyID)
		whereClause = " WHERE p.company_id = $1"
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT p.id, p.company_id, p.department_id, p.name, p.description, p.start_date, p.end_date, p.is_active, p.number_of_employees, p.created_at, p.updated_at,
               c.id, c.name, d.id, d.name
          FROM projects p
          JOIN companies c ON c.id = p.company_id
          LEFT JOIN departments d ON d.id = p.department_id` + whereClause + `
         ORDER BY p.created_at DESC, p.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateProjectPgError(err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, "", translateProjectPgError(err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateProjectPgError(err)
	}

	var nextToken string
	if len(projects) == limitWithBuffer {
		projects = projects[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return projects, nextToken, nil
}

// Assign は社員をプロジェクトにアサインします。
func (r *ProjectRepository) Assign(ctx context.Context, a *project.Assignment) (*project.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO project_assignments (project_id, employee_id, assigned_at)
        VALUES ($1, $2, $3)
        RETURNING id, project_id, employee_id, assigned_at
    `, a.ProjectID, a.EmployeeID, a.AssignedAt)

	var created project.Assignment
	if err := row.Scan(&created.ID, &created.ProjectID, &created.EmployeeID, &created.AssignedAt); err != nil {
		return nil, translateProjectPgError(err)
	}

	if err := r.recountProjectEmployees(ctx, created.ProjectID); err != nil {
		return nil, translateProjectPgError(err)
	}
	return &created, nil
}

func (r *ProjectRepository) recountParentProjects(ctx context.Context, companyID string, departmentID *string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        UPDATE companies
           SET number_of_projects = (SELECT COUNT(*) FROM projects WHERE company_id = $1)
         WHERE id = $1
    `, companyID); err != nil {
		return err
	}

	if departmentID == nil {
		return nil
	}

	_, err := exec.Exec(ctx, `
        UPDATE departments
           SET number_of_projects = (SELECT COUNT(*) FROM projects WHERE department_id = $1)
         WHERE id = $1
    `, *departmentID)
	return err
}

func (r *ProjectRepository) recountProjectEmployees(ctx context.Context, projectID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE projects
           SET number_of_employees = (SELECT COUNT(*) FROM project_assignments WHERE project_id = $1)
         WHERE id = $1
    `, projectID)
	return err
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		id                   string
		companyID            string
		departmentID         sql.NullString
		name                 string
		description          string
		startDate            sql.NullTime
		endDate              sql.NullTime
		isActive             bool
		numEmployees         int
		createdAt, updatedAt time.Time
		companyJoinedID      string
		companyName          string
		deptJoinedID         sql.NullString
		deptName             sql.NullString
	)

	if err := row.Scan(
		&id,
		&companyID,
		&departmentID,
		&name,
		&description,
		&startDate,
		&endDate,
		&isActive,
		&numEmployees,
		&createdAt,
		&updatedAt,
		&companyJoinedID,
		&companyName,
		&deptJoinedID,
		&deptName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}

	p := &project.Project{
		ID:                id,
		CompanyID:         companyID,
		Name:              name,
		Description:       description,
		IsActive:          isActive,
		NumberOfEmployees: numEmployees,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Company: &project.CompanySnapshot{
			ID:   companyJoinedID,
			Name: companyName,
		},
	}

	if departmentID.Valid {
		p.DepartmentID = &departmentID.String
	}
	if startDate.Valid {
		p.StartDate = datePtr(startDate.Time)
	}
	if endDate.Valid {
		p.EndDate = datePtr(endDate.Time)
	}
	if deptJoinedID.Valid {
		p.Department = &project.DepartmentSnapshot{
			ID:   deptJoinedID.String,
			Name: deptName.String,
		}
	}

	return p, nil
}

func translateProjectPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return project.ErrProjectNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == "project_assignments_project_id_employee_id_key" {
				return project.ErrAlreadyAssigned
			}
			return err
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "projects_company_id_fkey":
				return project.ErrCompanyNotFound
			case "projects_department_id_fkey":
				return project.ErrDepartmentNotFound
			case "project_assignments_project_id_fkey":
				return project.ErrProjectNotFound
			case "project_assignments_employee_id_fkey":
				return project.ErrEmployeeNotFound
			default:
				return err
			}
		case checkViolationCode:
			return project.ErrInvalidDateRange
		}
	}

	return err
}
