package department

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

// Service は部署に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は部署ユースケースの公開インターフェースです。
type UseCase interface {
	CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error)
	GetDepartment(ctx context.Context, in GetDepartmentInput) (*Department, error)
	ListDepartments(ctx context.Context, in ListDepartmentsInput) (*ListDepartmentsResult, error)
	UpdateDepartment(ctx context.Context, in UpdateDepartmentInput) (*Department, error)
	DeleteDepartment(ctx context.Context, in DeleteDepartmentInput) error
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

// CreateDepartmentInput は部署作成時の入力です。
type CreateDepartmentInput struct {
	CompanyID string
	Name      string
}

// UpdateDepartmentInput は部署更新時の入力です。
type UpdateDepartmentInput struct {
	ID   string
	Name *string
}

// DeleteDepartmentInput は部署削除時の入力です。
type DeleteDepartmentInput struct {
	ID string
}

// GetDepartmentInput は部署取得時の入力です。
type GetDepartmentInput struct {
	ID string
}

// ListDepartmentsInput は一覧取得時の入力です。
type ListDepartmentsInput struct {
	CompanyID string
	PageSize  int
	PageToken string
}

// ListDepartmentsResult は一覧取得結果を表します。
type ListDepartmentsResult struct {
	Departments   []*Department
	NextPageToken string
}

// CreateDepartment は新しい部署を作成します。
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return nil, ErrInvalidCompanyID
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	var created *Department
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Department{
			CompanyID: companyID,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
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

// GetDepartment は部署を取得します。
func (s *Service) GetDepartment(ctx context.Context, in GetDepartmentInput) (*Department, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Department
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

// ListDepartments は部署の一覧を取得します。
func (s *Service) ListDepartments(ctx context.Context, in ListDepartmentsInput) (*ListDepartmentsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		departments []*Department
		nextToken   string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListDepartmentsFilter{
			CompanyID: strings.TrimSpace(in.CompanyID),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		departments = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListDepartmentsResult{Departments: departments, NextPageToken: nextToken}, nil
}

// UpdateDepartment は部署情報を更新します。
func (s *Service) UpdateDepartment(ctx context.Context, in UpdateDepartmentInput) (*Department, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Department
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

// DeleteDepartment は部署を削除します。
func (s *Service) DeleteDepartment(ctx context.Context, in DeleteDepartmentInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > maxNameLength {
		return "", ErrInvalidName
	}
	return trimmed, nil
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
