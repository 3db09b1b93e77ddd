package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/company"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanCompany_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 7 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "company-1"
		*(dest[1].(*string)) = "Acme"
		*(dest[2].(*int)) = 12
		*(dest[3].(*int)) = 3
		*(dest[4].(*int)) = 5
		*(dest[5].(*time.Time)) = createdAt
		*(dest[6].(*time.Time)) = updatedAt
		return nil
	}}

	c, err := scanCompany(row)
	if err != nil {
		t.Fatalf("scanCompany returned error: %v", err)
	}

	if c.NumberOfEmployees != 12 || c.NumberOfDepartments != 3 || c.NumberOfProjects != 5 {
		t.Fatalf("unexpected counters: %+v", c)
	}
}

func TestScanCompany_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanCompany(row)
	if !errors.Is(err, company.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestCompanyRepository_List_WithNextToken(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewCompanyRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT id, name, number_of_employees, number_of_departments, number_of_projects, created_at, updated_at
          FROM companies
         ORDER BY created_at DESC, id DESC
         LIMIT $1
        OFFSET $2
    `)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "number_of_employees", "number_of_departments", "number_of_projects", "created_at", "updated_at"}).
		AddRow("company-1", "Acme", 1, 1, 1, now, now).
		AddRow("company-2", "Globex", 2, 2, 2, now, now).
		AddRow("company-3", "Initech", 3, 3, 3, now, now)

	mock.ExpectQuery(query).
		WithArgs(3, 0).
		WillReturnRows(rows)

	companies, nextToken, err := repo.List(context.Background(), company.ListCompaniesFilter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}

	if nextToken != "2" {
		t.Fatalf("expected next token '2', got %s", nextToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompanyRepository_List_InvalidArguments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewCompanyRepository(mock)

	if _, _, err := repo.List(context.Background(), company.ListCompaniesFilter{Limit: 0, Offset: 0}); !errors.Is(err, company.ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}

	if _, _, err := repo.List(context.Background(), company.ListCompaniesFilter{Limit: 1, Offset: -1}); !errors.Is(err, company.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
