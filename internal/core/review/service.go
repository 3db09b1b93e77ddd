package review

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
)

// Service は人事評価に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	authz Authorizer
}

// UseCase は人事評価ユースケースの公開インターフェースです。
type UseCase interface {
	CreateReview(ctx context.Context, in CreateReviewInput) (*PerformanceReview, error)
	GetReview(ctx context.Context, in GetReviewInput) (*PerformanceReview, error)
	ListReviews(ctx context.Context, in ListReviewsInput) (*ListReviewsResult, error)
	UpdateReview(ctx context.Context, in UpdateReviewInput) (*PerformanceReview, error)
	DeleteReview(ctx context.Context, in DeleteReviewInput) error
	ChangeStage(ctx context.Context, in ChangeStageInput) (*PerformanceReview, error)
}

// NewService は Service を生成します。authz が nil の場合は全操作を拒否します。
func NewService(repo Repository, clock Clock, tx TransactionManager, authz Authorizer) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if authz == nil {
		authz = denyAllAuthorizer{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, authz: authz}
}

// CreateReviewInput は評価作成時の入力です。初期ステージは呼び出し元から受け取りません。
type CreateReviewInput struct {
	Actor         Actor
	EmployeeID    string
	ScheduledDate *time.Time
	Feedback      string
}

// GetReviewInput は評価取得時の入力です。
type GetReviewInput struct {
	Actor Actor
	ID    string
}

// ListReviewsInput は一覧取得時の入力です。
type ListReviewsInput struct {
	Actor     Actor
	PageSize  int
	PageToken string
}

// ListReviewsResult は一覧取得結果を表します。
type ListReviewsResult struct {
	Reviews       []*PerformanceReview
	NextPageToken string
}

// UpdateReviewInput は評価更新時の入力です。Stage はここでは更新できません。
type UpdateReviewInput struct {
	Actor            Actor
	ID               string
	ScheduledDate    *time.Time
	ScheduledDateSet bool
	Feedback         *string
}

// DeleteReviewInput は評価削除時の入力です。
type DeleteReviewInput struct {
	Actor Actor
	ID    string
}

// ChangeStageInput はステージ遷移時の入力です。Stage は未検証の生文字列です。
type ChangeStageInput struct {
	Actor Actor
	ID    string
	Stage string
}

// CreateReview は新しい評価を pending_review で作成します。
func (s *Service) CreateReview(ctx context.Context, in CreateReviewInput) (*PerformanceReview, error) {
	if !s.authz.CanManageReviews(in.Actor) {
		return nil, ErrPermissionDenied
	}

	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	var created *PerformanceReview
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		rev := &PerformanceReview{
			EmployeeID:    employeeID,
			Stage:         StagePendingReview,
			ScheduledDate: cloneTime(in.ScheduledDate),
			Feedback:      in.Feedback,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		result, err := s.repo.Create(txCtx, rev)
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

// GetReview は評価を取得します。全件閲覧権限のない呼び出し元には
// 自身の社員レコードに紐づく評価のみを返し、それ以外は存在しない扱いにします。
func (s *Service) GetReview(ctx context.Context, in GetReviewInput) (*PerformanceReview, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *PerformanceReview
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if !s.authz.CanViewAllReviews(in.Actor) && found.EmployeeID != in.Actor.EmployeeID {
			return ErrReviewNotFound
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListReviews は評価の一覧を取得します。
func (s *Service) ListReviews(ctx context.Context, in ListReviewsInput) (*ListReviewsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	filter := ListReviewsFilter{Limit: limit, Offset: offset}
	if !s.authz.CanViewAllReviews(in.Actor) {
		if strings.TrimSpace(in.Actor.EmployeeID) == "" {
			return &ListReviewsResult{Reviews: []*PerformanceReview{}}, nil
		}
		filter.EmployeeID = in.Actor.EmployeeID
	}

	var (
		reviews   []*PerformanceReview
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		reviews = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListReviewsResult{Reviews: reviews, NextPageToken: nextToken}, nil
}

// UpdateReview は予定日時とフィードバック本文を更新します。
func (s *Service) UpdateReview(ctx context.Context, in UpdateReviewInput) (*PerformanceReview, error) {
	if !s.authz.CanManageReviews(in.Actor) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *PerformanceReview
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.ScheduledDateSet {
			existing.ScheduledDate = cloneTime(in.ScheduledDate)
		}
		if in.Feedback != nil {
			existing.Feedback = *in.Feedback
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

// DeleteReview は評価を削除します。
func (s *Service) DeleteReview(ctx context.Context, in DeleteReviewInput) error {
	if !s.authz.CanManageReviews(in.Actor) {
		return ErrPermissionDenied
	}
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// ChangeStage はステージ遷移を検証して適用します。
// 認可の否定、未知ステージ、遷移表にない遷移はそれぞれ別のエラーとして報告され、
// 拒否された経路では評価は一切変更されません。
func (s *Service) ChangeStage(ctx context.Context, in ChangeStageInput) (*PerformanceReview, error) {
	// 認可はステージ値の検証より先。拒否された呼び出し元には
	// 要求ステージの内容にかかわらず ErrPermissionDenied を返します。
	if !s.authz.CanChangeStage(in.Actor) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	raw := strings.TrimSpace(in.Stage)
	if raw == "" {
		return nil, ErrStageRequired
	}

	requested, err := ParseStage(raw)
	if err != nil {
		return nil, err
	}

	var updated *PerformanceReview
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}

		if !CanTransition(current.Stage, requested) {
			return &InvalidTransitionError{From: current.Stage, To: requested}
		}

		current.Stage = requested
		current.UpdatedAt = s.clock.Now()

		result, err := s.repo.UpdateStage(txCtx, current)
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

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
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
