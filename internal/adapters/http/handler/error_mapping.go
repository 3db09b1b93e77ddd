package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/company"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/department"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/employee"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/project"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/review"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/user"
)

// statusForError はドメインエラーを HTTP ステータスと応答メッセージに変換します。
// ステージ関連のメッセージは API 契約として固定されています。
func statusForError(err error) (int, string) {
	var transitionErr *review.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusBadRequest, fmt.Sprintf("Invalid transition from %s to %s", transitionErr.From, transitionErr.To)
	}

	switch {
	case errors.Is(err, review.ErrStageRequired):
		return http.StatusBadRequest, "stage field is required"
	case errors.Is(err, review.ErrUnknownStage):
		return http.StatusBadRequest, "stage does not exist"
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, errMalformedBody.Error()
	case errors.Is(err, review.ErrPermissionDenied):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, project.ErrAlreadyAssigned):
		return http.StatusConflict, err.Error()
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusBadRequest, err.Error()
	case isNotFound(err):
		return http.StatusNotFound, err.Error()
	case isValidation(err):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func isNotFound(err error) bool {
	targets := []error{
		company.ErrCompanyNotFound,
		department.ErrDepartmentNotFound,
		department.ErrCompanyNotFound,
		project.ErrProjectNotFound,
		project.ErrCompanyNotFound,
		project.ErrDepartmentNotFound,
		project.ErrEmployeeNotFound,
		employee.ErrEmployeeNotFound,
		employee.ErrCompanyNotFound,
		employee.ErrDepartmentNotFound,
		employee.ErrUserNotFound,
		review.ErrReviewNotFound,
		review.ErrEmployeeNotFound,
		user.ErrUserNotFound,
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isValidation(err error) bool {
	targets := []error{
		company.ErrInvalidName,
		company.ErrInvalidID,
		company.ErrInvalidPageSize,
		company.ErrInvalidPageToken,
		department.ErrInvalidName,
		department.ErrInvalidCompanyID,
		department.ErrInvalidID,
		department.ErrInvalidPageSize,
		department.ErrInvalidPageToken,
		project.ErrInvalidName,
		project.ErrInvalidCompanyID,
		project.ErrInvalidEmployeeID,
		project.ErrInvalidID,
		project.ErrInvalidDateRange,
		project.ErrInvalidPageSize,
		project.ErrInvalidPageToken,
		employee.ErrEmailAlreadyExists,
		employee.ErrInvalidID,
		employee.ErrInvalidCompanyID,
		employee.ErrInvalidDepartmentID,
		employee.ErrInvalidUserID,
		employee.ErrInvalidEmail,
		employee.ErrInvalidName,
		employee.ErrInvalidPageSize,
		employee.ErrInvalidPageToken,
		review.ErrInvalidID,
		review.ErrInvalidEmployeeID,
		review.ErrInvalidPageSize,
		review.ErrInvalidPageToken,
		user.ErrEmailAlreadyExists,
		user.ErrInvalidEmail,
		user.ErrInvalidUsername,
		user.ErrInvalidPassword,
		user.ErrInvalidRole,
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func respondError(w http.ResponseWriter, err error) {
	status, message := statusForError(err)
	writeError(w, status, message)
}
