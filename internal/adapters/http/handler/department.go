package handler

import (
	"net/http"
	"time"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/department"
)

// DepartmentHandler は部署リソースのエンドポイントです。
type DepartmentHandler struct {
	departments department.UseCase
}

// NewDepartmentHandler は DepartmentHandler を生成します。
func NewDepartmentHandler(departments department.UseCase) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

type departmentResponse struct {
	ID                string        `json:"id"`
	CompanyID         string        `json:"company_id"`
	Name              string        `json:"name"`
	NumberOfEmployees int           `json:"number_of_employees"`
	NumberOfProjects  int           `json:"number_of_projects"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Company           *snapshotBody `json:"company,omitempty"`
}

type snapshotBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listDepartmentsResponse struct {
	Departments   []departmentResponse `json:"departments"`
	NextPageToken string               `json:"next_page_token,omitempty"`
}

type createDepartmentRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}

type updateDepartmentRequest struct {
	Name *string `json:"name"`
}

// Create は POST /departments を処理します。
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.departments.CreateDepartment(r.Context(), department.CreateDepartmentInput{
		CompanyID: req.CompanyID,
		Name:      req.Name,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDepartmentResponse(created))
}

// Get は GET /departments/{id} を処理します。
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.departments.GetDepartment(r.Context(), department.GetDepartmentInput{ID: r.PathValue("id")})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDepartmentResponse(found))
}

// List は GET /departments を処理します。
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize, err := pageSizeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	result, err := h.departments.ListDepartments(r.Context(), department.ListDepartmentsInput{
		CompanyID: r.URL.Query().Get("company_id"),
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	resp := listDepartmentsResponse{
		Departments:   make([]departmentResponse, 0, len(result.Departments)),
		NextPageToken: result.NextPageToken,
	}
	for _, d := range result.Departments {
		resp.Departments = append(resp.Departments, toDepartmentResponse(d))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update は PUT /departments/{id} を処理します。
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.departments.UpdateDepartment(r.Context(), department.UpdateDepartmentInput{
		ID:   r.PathValue("id"),
		Name: req.Name,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDepartmentResponse(updated))
}

// Delete は DELETE /departments/{id} を処理します。
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.departments.DeleteDepartment(r.Context(), department.DeleteDepartmentInput{ID: r.PathValue("id")}); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toDepartmentResponse(d *department.Department) departmentResponse {
	resp := departmentResponse{
		ID:                d.ID,
		CompanyID:         d.CompanyID,
		Name:              d.Name,
		NumberOfEmployees: d.NumberOfEmployees,
		NumberOfProjects:  d.NumberOfProjects,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.Company != nil {
		resp.Company = &snapshotBody{ID: d.Company.ID, Name: d.Company.Name}
	}
	return resp
}
