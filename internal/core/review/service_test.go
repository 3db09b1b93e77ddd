package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

// roleAuthorizer はテスト用の単純なロール判定です。
type roleAuthorizer struct{}

func (roleAuthorizer) CanChangeStage(a Actor) bool    { return a.Role == "admin" || a.Role == "manager" }
func (roleAuthorizer) CanManageReviews(a Actor) bool  { return a.Role == "admin" || a.Role == "manager" }
func (roleAuthorizer) CanViewAllReviews(a Actor) bool { return a.Role == "admin" || a.Role == "manager" }

type fakeReviewRepo struct {
	reviews  map[string]*PerformanceReview
	sequence int
	order    []string

	findForUpdateErr error
	updateStageErr   error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*PerformanceReview)}
}

func (r *fakeReviewRepo) Create(_ context.Context, rev *PerformanceReview) (*PerformanceReview, error) {
	clone := cloneReview(rev)
	r.sequence++
	clone.ID = fmt.Sprintf("review-%d", r.sequence)
	r.reviews[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneReview(clone), nil
}

func (r *fakeReviewRepo) Update(_ context.Context, rev *PerformanceReview) (*PerformanceReview, error) {
	existing, ok := r.reviews[rev.ID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	existing.ScheduledDate = cloneTime(rev.ScheduledDate)
	existing.Feedback = rev.Feedback
	existing.UpdatedAt = rev.UpdatedAt
	return cloneReview(existing), nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id string) (*PerformanceReview, error) {
	rev, ok := r.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return cloneReview(rev), nil
}

func (r *fakeReviewRepo) FindByIDForUpdate(ctx context.Context, id string) (*PerformanceReview, error) {
	if r.findForUpdateErr != nil {
		return nil, r.findForUpdateErr
	}
	return r.FindByID(ctx, id)
}

func (r *fakeReviewRepo) UpdateStage(_ context.Context, rev *PerformanceReview) (*PerformanceReview, error) {
	if r.updateStageErr != nil {
		return nil, r.updateStageErr
	}
	existing, ok := r.reviews[rev.ID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	existing.Stage = rev.Stage
	existing.UpdatedAt = rev.UpdatedAt
	return cloneReview(existing), nil
}

func (r *fakeReviewRepo) List(_ context.Context, filter ListReviewsFilter) ([]*PerformanceReview, string, error) {
	matched := make([]*PerformanceReview, 0, len(r.order))
	for _, id := range r.order {
		rev, ok := r.reviews[id]
		if !ok {
			continue
		}
		if filter.EmployeeID != "" && rev.EmployeeID != filter.EmployeeID {
			continue
		}
		matched = append(matched, cloneReview(rev))
	}
	return matched, "", nil
}

func cloneReview(rev *PerformanceReview) *PerformanceReview {
	clone := *rev
	clone.ScheduledDate = cloneTime(rev.ScheduledDate)
	return &clone
}

func newTestService(repo *fakeReviewRepo, now time.Time) *Service {
	return NewService(repo, &stubClock{now: now}, nil, roleAuthorizer{})
}

var (
	adminActor    = Actor{UserID: "user-admin", Role: "admin"}
	managerActor  = Actor{UserID: "user-manager", Role: "manager"}
	employeeActor = Actor{UserID: "user-emp", Role: "employee", EmployeeID: "emp-1"}
)

func seedReview(t *testing.T, svc *Service, employeeID string) *PerformanceReview {
	t.Helper()

	scheduled := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	created, err := svc.CreateReview(context.Background(), CreateReviewInput{
		Actor:         adminActor,
		EmployeeID:    employeeID,
		ScheduledDate: &scheduled,
		Feedback:      "OK",
	})
	if err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}
	return created
}

func TestCreateReview_ForcesPendingStage(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeReviewRepo(), now)

	created := seedReview(t, svc, "emp-1")

	if created.Stage != StagePendingReview {
		t.Fatalf("expected stage %s, got %s", StagePendingReview, created.Stage)
	}
	if created.EmployeeID != "emp-1" {
		t.Fatalf("unexpected employee id: %s", created.EmployeeID)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not taken from clock: %+v", created)
	}
}

func TestCreateReview_EmployeeRoleDenied(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())

	_, err := svc.CreateReview(context.Background(), CreateReviewInput{
		Actor:      employeeActor,
		EmployeeID: "emp-1",
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(repo.reviews) != 0 {
		t.Fatal("review must not be created on a denied path")
	}
}

func TestChangeStage_LegalTransition(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: createdAt}
	repo := newFakeReviewRepo()
	svc := NewService(repo, clock, nil, roleAuthorizer{})

	created := seedReview(t, svc, "emp-1")

	clock.now = createdAt.Add(time.Hour)
	updated, err := svc.ChangeStage(context.Background(), ChangeStageInput{
		Actor: managerActor,
		ID:    created.ID,
		Stage: "review_scheduled",
	})
	if err != nil {
		t.Fatalf("ChangeStage error: %v", err)
	}

	if updated.Stage != StageReviewScheduled {
		t.Fatalf("expected stage review_scheduled, got %s", updated.Stage)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at must advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}

	// stage と updated_at 以外は変更されないこと。
	if updated.EmployeeID != created.EmployeeID ||
		updated.Feedback != created.Feedback ||
		!updated.CreatedAt.Equal(created.CreatedAt) ||
		!updated.ScheduledDate.Equal(*created.ScheduledDate) {
		t.Fatalf("fields other than stage changed: %+v", updated)
	}
}

func TestChangeStage_IllegalTransitionLeavesReviewUnchanged(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	_, err := svc.ChangeStage(context.Background(), ChangeStageInput{
		Actor: adminActor,
		ID:    created.ID,
		Stage: "review_approved",
	})

	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transitionErr.From != StagePendingReview || transitionErr.To != StageReviewApproved {
		t.Fatalf("unexpected endpoints: %+v", transitionErr)
	}

	stored, err := svc.GetReview(context.Background(), GetReviewInput{Actor: adminActor, ID: created.ID})
	if err != nil {
		t.Fatalf("GetReview error: %v", err)
	}
	if stored.Stage != StagePendingReview || !stored.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("rejected transition mutated the review: %+v", stored)
	}
}

func TestChangeStage_SameStageIsIllegal(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	_, err := svc.ChangeStage(context.Background(), ChangeStageInput{
		Actor: adminActor,
		ID:    created.ID,
		Stage: string(StagePendingReview),
	})

	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError for no-op transition, got %v", err)
	}
}

func TestChangeStage_RejectionLoop(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	path := []Stage{
		StageReviewScheduled,
		StageFeedbackProvided,
		StageUnderApproval,
		StageReviewRejected,
		StageFeedbackProvided,
		StageUnderApproval,
		StageReviewApproved,
	}

	for _, next := range path {
		updated, err := svc.ChangeStage(context.Background(), ChangeStageInput{
			Actor: adminActor,
			ID:    created.ID,
			Stage: string(next),
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if updated.Stage != next {
			t.Fatalf("expected stage %s, got %s", next, updated.Stage)
		}
	}

	// 承認済みは終端。
	if _, err := svc.ChangeStage(context.Background(), ChangeStageInput{
		Actor: adminActor,
		ID:    created.ID,
		Stage: string(StageFeedbackProvided),
	}); err == nil {
		t.Fatal("transition out of review_approved must fail")
	}
}

func TestChangeStage_ValidationAndAuthorization(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	cases := []struct {
		name     string
		actor    Actor
		id       string
		stage    string
		expected error
	}{
		{name: "missing stage", actor: adminActor, id: created.ID, stage: "   ", expected: ErrStageRequired},
		{name: "unknown stage", actor: adminActor, id: created.ID, stage: "promoted", expected: ErrUnknownStage},
		{name: "employee role denied", actor: employeeActor, id: created.ID, stage: "review_scheduled", expected: ErrPermissionDenied},
		{name: "employee denied before missing stage", actor: employeeActor, id: created.ID, stage: "", expected: ErrPermissionDenied},
		{name: "employee denied before unknown stage", actor: employeeActor, id: created.ID, stage: "bogus_stage", expected: ErrPermissionDenied},
		{name: "missing id", actor: adminActor, id: "", stage: "review_scheduled", expected: ErrInvalidID},
		{name: "unknown review", actor: adminActor, id: "review-404", stage: "review_scheduled", expected: ErrReviewNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChangeStage(context.Background(), ChangeStageInput{Actor: tc.actor, ID: tc.id, Stage: tc.stage})
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}

	stored, err := svc.GetReview(context.Background(), GetReviewInput{Actor: adminActor, ID: created.ID})
	if err != nil {
		t.Fatalf("GetReview error: %v", err)
	}
	if stored.Stage != StagePendingReview {
		t.Fatalf("rejected calls mutated the review: %s", stored.Stage)
	}
}

func TestChangeStage_EmployeeDeniedBeforeStateMachine(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	// 遷移としても不正な要求だが、認可エラーが先に返ること。
	repo.findForUpdateErr = errors.New("state machine must not be reached")
	_, err := svc.ChangeStage(context.Background(), ChangeStageInput{
		Actor: employeeActor,
		ID:    created.ID,
		Stage: "review_approved",
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestChangeStage_NilAuthorizerFailsClosed(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil, nil)

	_, err := svc.ChangeStage(context.Background(), ChangeStageInput{
		Actor: adminActor,
		ID:    "review-1",
		Stage: "review_scheduled",
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestListReviews_EmployeeScopedToOwnRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())

	seedReview(t, svc, "emp-1")
	seedReview(t, svc, "emp-2")

	all, err := svc.ListReviews(context.Background(), ListReviewsInput{Actor: managerActor})
	if err != nil {
		t.Fatalf("ListReviews error: %v", err)
	}
	if len(all.Reviews) != 2 {
		t.Fatalf("manager expected 2 reviews, got %d", len(all.Reviews))
	}

	own, err := svc.ListReviews(context.Background(), ListReviewsInput{Actor: employeeActor})
	if err != nil {
		t.Fatalf("ListReviews error: %v", err)
	}
	if len(own.Reviews) != 1 || own.Reviews[0].EmployeeID != "emp-1" {
		t.Fatalf("employee must only see own reviews: %+v", own.Reviews)
	}

	orphan := Actor{UserID: "user-x", Role: "employee"}
	none, err := svc.ListReviews(context.Background(), ListReviewsInput{Actor: orphan})
	if err != nil {
		t.Fatalf("ListReviews error: %v", err)
	}
	if len(none.Reviews) != 0 {
		t.Fatalf("employee without employee record must see nothing: %+v", none.Reviews)
	}
}

func TestGetReview_EmployeeCannotSeeOthers(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	other := seedReview(t, svc, "emp-2")

	if _, err := svc.GetReview(context.Background(), GetReviewInput{Actor: employeeActor, ID: other.ID}); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestUpdateReview_StageNotTouched(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	feedback := "Revised feedback"
	updated, err := svc.UpdateReview(context.Background(), UpdateReviewInput{
		Actor:            adminActor,
		ID:               created.ID,
		ScheduledDateSet: true,
		ScheduledDate:    nil,
		Feedback:         &feedback,
	})
	if err != nil {
		t.Fatalf("UpdateReview error: %v", err)
	}

	if updated.Feedback != feedback || updated.ScheduledDate != nil {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Stage != StagePendingReview {
		t.Fatalf("UpdateReview must not change stage: %s", updated.Stage)
	}
}

func TestDeleteReview_Permissions(t *testing.T) {
	t.Parallel()

	repo := newFakeReviewRepo()
	svc := newTestService(repo, time.Now().UTC())
	created := seedReview(t, svc, "emp-1")

	if err := svc.DeleteReview(context.Background(), DeleteReviewInput{Actor: employeeActor, ID: created.ID}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if err := svc.DeleteReview(context.Background(), DeleteReviewInput{Actor: adminActor, ID: created.ID}); err != nil {
		t.Fatalf("DeleteReview error: %v", err)
	}

	if _, err := svc.GetReview(context.Background(), GetReviewInput{Actor: adminActor, ID: created.ID}); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound after delete, got %v", err)
	}
}
