package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxNameLength       = 255
)

// Service はプロジェクトに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase はプロジェクトユースケースの公開インターフェースです。
type UseCase interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, in GetProjectInput) (*Project, error)
	ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error)
	UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, in DeleteProjectInput) error
	AssignEmployee(ctx context.Context, in AssignEmployeeInput) (*Assignment, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateProjectInput はプロジェクト作成時の入力です。
type CreateProjectInput struct {
	CompanyID    string
	DepartmentID *string
	Name         string
	Description  string
	StartDate    *time.Time
	EndDate      *time.Time
	IsActive     *bool
}

// UpdateProjectInput はプロジェクト更新時の入力です。
type UpdateProjectInput struct {
	ID           string
	Name         *string
	Description  *string
	StartDate    *time.Time
	StartDateSet bool
	EndDate      *time.Time
	EndDateSet   bool
	IsActive     *bool
}

// DeleteProjectInput はプロジェクト削除時の入力です。
type DeleteProjectInput struct {
	ID string
}

// GetProjectInput はプロジェクト取得時の入力です。
type GetProjectInput struct {
	ID string
}

// ListProjectsInput は一覧取得時の入力です。
type ListProjectsInput struct {
	CompanyID string
	PageSize  int
	PageToken string
}

// ListProjectsResult は一覧取得結果を表します。
type ListProjectsResult struct {
	Projects      []*Project
	NextPageToken string
}

// AssignEmployeeInput は社員アサイン時の入力です。
type AssignEmployeeInput struct {
	ProjectID  string
	EmployeeID string
}

// CreateProject は新しいプロジェクトを作成します。
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return nil, ErrInvalidCompanyID
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	startDate := normalizeDate(in.StartDate)
	endDate := normalizeDate(in.EndDate)
	if err := validateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	var created *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Project{
			CompanyID:    companyID,
			DepartmentID: cloneString(in.DepartmentID),
			Name:         name,
			Description:  in.Description,
			StartDate:    startDate,
			EndDate:      endDate,
			IsActive:     isActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetProject はプロジェクトを取得します。
func (s *Service) GetProject(ctx context.Context, in GetProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Project
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListProjects はプロジェクトの一覧を取得します。
func (s *Service) ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		projects  []*Project
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListProjectsFilter{
			CompanyID: strings.TrimSpace(in.CompanyID),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		projects = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListProjectsResult{Projects: projects, NextPageToken: nextToken}, nil
}

// UpdateProject はプロジェクト情報を更新します。
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.Description != nil {
			existing.Description = *in.Description
		}

		if in.StartDateSet {
			existing.StartDate = normalizeDate(in.StartDate)
		}
		if in.EndDateSet {
			existing.EndDate = normalizeDate(in.EndDate)
		}
		if err := validateDateRange(existing.StartDate, existing.EndDate); err != nil {
			return err
		}

		if in.IsActive != nil {
			existing.IsActive = *in.IsActive
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProject はプロジェクトを削除します。
func (s *Service) DeleteProject(ctx context.Context, in DeleteProjectInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// AssignEmployee は社員をプロジェクトへアサインします。
func (s *Service) AssignEmployee(ctx context.Context, in AssignEmployeeInput) (*Assignment, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id: %w", ErrInvalidID)
	}
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	var created *Assignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Assign(txCtx, &Assignment{
			ProjectID:  projectID,
			EmployeeID: employeeID,
			AssignedAt: s.clock.Now(),
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > maxNameLength {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

func validateDateRange(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if end.Before(*start) {
		return ErrInvalidDateRange
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
