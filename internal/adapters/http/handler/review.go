package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/employee"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/review"
)

// EmployeeDirectory は認証済みユーザーに紐づく社員レコードを解決します。
type EmployeeDirectory interface {
	GetEmployeeByUserID(ctx context.Context, userID string) (*employee.Employee, error)
}

// ReviewHandler は人事評価リソースのエンドポイントです。
type ReviewHandler struct {
	reviews   review.UseCase
	directory EmployeeDirectory
}

// NewReviewHandler は ReviewHandler を生成します。
func NewReviewHandler(reviews review.UseCase, directory EmployeeDirectory) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, directory: directory}
}

type reviewResponse struct {
	ID            string              `json:"id"`
	EmployeeID    string              `json:"employee_id"`
	Stage         string              `json:"stage"`
	ScheduledDate *string             `json:"scheduled_date"`
	Feedback      string              `json:"feedback"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Employee      *reviewEmployeeBody `json:"employee,omitempty"`
}

type reviewEmployeeBody struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type listReviewsResponse struct {
	Reviews       []reviewResponse `json:"reviews"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

type createReviewRequest struct {
	EmployeeID    string  `json:"employee_id"`
	ScheduledDate *string `json:"scheduled_date"`
	Feedback      string  `json:"feedback"`
}

type updateReviewRequest struct {
	ScheduledDate *string `json:"scheduled_date"`
	Feedback      *string `json:"feedback"`
}

type changeStageRequest struct {
	Stage *string `json:"stage"`
}

// actorFrom はリクエストコンテキストの認証済みユーザーから操作主体を組み立てます。
// 社員レコードを持たないユーザーの EmployeeID は空のままとし、
// 閲覧スコープの判定はユースケース側に委ねます。
func (h *ReviewHandler) actorFrom(r *http.Request) (review.Actor, error) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		return review.Actor{}, errors.New("handler: principal missing from context")
	}

	actor := review.Actor{
		UserID: principal.ID,
		Role:   string(principal.Role),
	}

	emp, err := h.directory.GetEmployeeByUserID(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return actor, nil
		}
		return review.Actor{}, err
	}
	actor.EmployeeID = emp.ID

	return actor, nil
}

// Create は POST /performance-reviews を処理します。
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	scheduledDate, err := parseTimestamp(req.ScheduledDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "scheduled_date must be RFC 3339 or YYYY-MM-DD")
		return
	}

	created, err := h.reviews.CreateReview(r.Context(), review.CreateReviewInput{
		Actor:         actor,
		EmployeeID:    req.EmployeeID,
		ScheduledDate: scheduledDate,
		Feedback:      req.Feedback,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(created))
}

// Get は GET /performance-reviews/{id} を処理します。
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	found, err := h.reviews.GetReview(r.Context(), review.GetReviewInput{
		Actor: actor,
		ID:    r.PathValue("id"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(found))
}

// List は GET /performance-reviews を処理します。
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	pageSize, err := pageSizeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	result, err := h.reviews.ListReviews(r.Context(), review.ListReviewsInput{
		Actor:     actor,
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	resp := listReviewsResponse{
		Reviews:       make([]reviewResponse, 0, len(result.Reviews)),
		NextPageToken: result.NextPageToken,
	}
	for _, rv := range result.Reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(rv))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update は PUT /performance-reviews/{id} を処理します。stage はここでは変更できません。
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req updateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	scheduledDate, err := parseTimestamp(req.ScheduledDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "scheduled_date must be RFC 3339 or YYYY-MM-DD")
		return
	}

	updated, err := h.reviews.UpdateReview(r.Context(), review.UpdateReviewInput{
		Actor:            actor,
		ID:               r.PathValue("id"),
		ScheduledDate:    scheduledDate,
		ScheduledDateSet: req.ScheduledDate != nil,
		Feedback:         req.Feedback,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(updated))
}

// Delete は DELETE /performance-reviews/{id} を処理します。
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), review.DeleteReviewInput{
		Actor: actor,
		ID:    r.PathValue("id"),
	}); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangeStage は POST /performance-reviews/{id}/change-stage を処理します。
func (h *ReviewHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req changeStageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	stage := ""
	if req.Stage != nil {
		stage = *req.Stage
	}

	changed, err := h.reviews.ChangeStage(r.Context(), review.ChangeStageInput{
		Actor: actor,
		ID:    r.PathValue("id"),
		Stage: stage,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(changed))
}

func toReviewResponse(rv *review.PerformanceReview) reviewResponse {
	resp := reviewResponse{
		ID:            rv.ID,
		EmployeeID:    rv.EmployeeID,
		Stage:         string(rv.Stage),
		ScheduledDate: formatTimestamp(rv.ScheduledDate),
		Feedback:      rv.Feedback,
		CreatedAt:     rv.CreatedAt,
		UpdatedAt:     rv.UpdatedAt,
	}
	if rv.Employee != nil {
		resp.Employee = &reviewEmployeeBody{
			ID:        rv.Employee.ID,
			FirstName: rv.Employee.FirstName,
			LastName:  rv.Employee.LastName,
			Email:     rv.Employee.Email,
		}
	}
	return resp
}
