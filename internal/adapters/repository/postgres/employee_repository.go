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
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
// 作成・削除時に会社・部署の社員数カウンタを同一トランザクション内で再集計します。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const employeeSelectColumns = `
        e.id, e.company_id, e.department_id, e.user_id,
        e.first_name, e.middle_name, e.last_name, e.email,
        e.mobile_number, e.address, e.position, e.hired_on,
        e.created_at, e.updated_at,
        c.id, c.name, d.id, d.name`

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO employees (company_id, department_id, user_id, first_name, middle_name, last_name, email, mobile_number, address, position, hired_on, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
            RETURNING id, company_id, department_id, user_id, first_name, middle_name, last_name, email, mobile_number, address, position, hired_on, created_at, updated_at
        )
        SELECT i.id, i.company_id, i.department_id, i.user_id,
               i.first_name, i.middle_name, i.last_name, i.email,
               i.mobile_number, i.address, i.position, i.hired_on,
               i.created_at, i.updated_at,
               c.id, c.name, d.id, d.name
          FROM inserted i
          JOIN companies c ON c.id = i.company_id
          JOIN departments d ON d.id = i.department_id
    `,
		e.CompanyID,
		e.DepartmentID,
		e.UserID,
		e.FirstName,
		e.MiddleName,
		e.LastName,
		e.Email,
		e.MobileNumber,
		e.Address,
		e.Position,
		nullableDate(e.HiredOn),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}

	if err := r.recountParentEmployees(ctx, created.CompanyID, created.DepartmentID); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE employees
               SET department_id = $1,
                   first_name = $2,
                   middle_name = $3,
                   last_name = $4,
                   email = $5,
                   mobile_number = $6,
                   address = $7,
                   position = $8,
                   hired_on = $9,
                   updated_at = $10
             WHERE id = $11
            RETURNING id, company_id, department_id, user_id, first_name, middle_name, last_name, email, mobile_number, address, position, hired_on, created_at, updated_at
        )
        SELECT u.id, u.company_id, u.department_id, u.user_id,
               u.first_name, u.middle_name, u.last_name, u.email,
               u.mobile_number, u.address, u.position, u.hired_on,
               u.created_at, u.updated_at,
               c.id, c.name, d.id, d.name
          FROM updated u
          JOIN companies c ON c.id = u.company_id
          JOIN departments d ON d.id = u.department_id
    `,
		e.DepartmentID,
		e.FirstName,
		e.MiddleName,
		e.LastName,
		e.Email,
		e.MobileNumber,
		e.Address,
		e.Position,
		nullableDate(e.HiredOn),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}

	if err := r.recountDepartmentEmployees(ctx, updated.DepartmentID); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `DELETE FROM employees WHERE id = $1 RETURNING company_id, department_id`, id)

	var companyID, departmentID string
	if err := row.Scan(&companyID, &departmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return translateEmployeePgError(err)
	}

	return translateEmployeePgError(r.recountParentEmployees(ctx, companyID, departmentID))
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeSelectColumns+`
          FROM employees e
          JOIN companies c ON c.id = e.company_id
          JOIN departments d ON d.id = e.department_id
         WHERE e.id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByUserID はユーザー ID で社員を取得します。
func (r *EmployeeRepository) FindByUserID(ctx context.Context, userID string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeSelectColumns+`
          FROM employees e
          JOIN companies c ON c.id = e.company_id
          JOIN departments d ON d.id = e.department_id
         WHERE e.user_id = $1
         LIMIT 1
    `, userID)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if strings.TrimSpace(filter.CompanyID) != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "e.company_id = "+placeholder)
		args = append(args, filter.CompanyID)
	}

	if strings.TrimSpace(filter.DepartmentID) != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "e.department_id = "+placeholder)
		args = append(args, filter.DepartmentID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + employeeSelectColumns + `
          FROM employees e
          JOIN companies c ON c.id = e.company_id
          JOIN departments d ON d.id = e.department_id` + whereClause + `
         ORDER BY e.created_at DESC, e.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

func (r *EmployeeRepository) recountParentEmployees(ctx context.Context, companyID, departmentID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        UPDATE companies
           SET number_of_employees = (SELECT COUNT(*) FROM employees WHERE company_id = $1)
         WHERE id = $1
    `, companyID); err != nil {
		return err
	}
	return r.recountDepartmentEmployees(ctx, departmentID)
}

func (r *EmployeeRepository) recountDepartmentEmployees(ctx context.Context, departmentID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE departments
           SET number_of_employees = (SELECT COUNT(*) FROM employees WHERE department_id = $1)
         WHERE id = $1
    `, departmentID)
	return err
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id                   string
		companyID            string
		departmentID         string
		userID               string
		firstName            string
		middleName           string
		lastName             string
		email                string
		mobileNumber         string
		address              string
		position             string
		hiredOn              sql.NullTime
		createdAt, updatedAt time.Time
		companyJoinedID      string
		companyName          string
		deptJoinedID         string
		deptName             string
	)

	if err := row.Scan(
		&id,
		&companyID,
		&departmentID,
		&userID,
		&firstName,
		&middleName,
		&lastName,
		&email,
		&mobileNumber,
		&address,
		&position,
		&hiredOn,
		&createdAt,
		&updatedAt,
		&companyJoinedID,
		&companyName,
		&deptJoinedID,
		&deptName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e := &employee.Employee{
		ID:           id,
		CompanyID:    companyID,
		DepartmentID: departmentID,
		UserID:       userID,
		FirstName:    firstName,
		MiddleName:   middleName,
		LastName:     lastName,
		Email:        email,
		MobileNumber: mobileNumber,
		Address:      address,
		Position:     position,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		Company: &employee.CompanySnapshot{
			ID:   companyJoinedID,
			Name: companyName,
		},
		Department: &employee.DepartmentSnapshot{
			ID:   deptJoinedID,
			Name: deptName,
		},
	}

	if hiredOn.Valid {
		e.HiredOn = datePtr(hiredOn.Time)
	}

	return e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmailAlreadyExists
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "employees_company_id_fkey":
				return employee.ErrCompanyNotFound
			case "employees_department_id_fkey":
				return employee.ErrDepartmentNotFound
			case "employees_user_id_fkey":
				return employee.ErrUserNotFound
			default:
				return err
			}
		}
	}

	return err
}
