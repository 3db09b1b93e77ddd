package handler

import (
	"net/http"
	"time"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/project"
)

// ProjectHandler はプロジェクトリソースとアサインのエンドポイントです。
type ProjectHandler struct {
	projects project.UseCase
}

// NewProjectHandler は ProjectHandler を生成します。
func NewProjectHandler(projects project.UseCase) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectResponse struct {
	ID                string        `json:"id"`
	CompanyID         string        `json:"company_id"`
	DepartmentID      *string       `json:"department_id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	StartDate         *string       `json:"start_date"`
	EndDate           *string       `json:"end_date"`
	IsActive          bool          `json:"is_active"`
	NumberOfEmployees int           `json:"number_of_employees"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Company           *snapshotBody `json:"company,omitempty"`
	Department        *snapshotBody `json:"department,omitempty"`
}

type listProjectsResponse struct {
	Projects      []projectResponse `json:"projects"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

type createProjectRequest struct {
	CompanyID    string  `json:"company_id"`
	DepartmentID *string `json:"department_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	IsActive     *bool   `json:"is_active"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsActive    *bool   `json:"is_active"`
}

type assignEmployeeRequest struct {
	ProjectID  string `json:"project_id"`
	EmployeeID string `json:"employee_id"`
}

type assignmentResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	EmployeeID string    `json:"employee_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Create は POST /projects を処理します。
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	created, err := h.projects.CreateProject(r.Context(), project.CreateProjectInput{
		CompanyID:    req.CompanyID,
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    startDate,
		EndDate:      endDate,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(created))
}

// Get は GET /projects/{id} を処理します。
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.projects.GetProject(r.Context(), project.GetProjectInput{ID: r.PathValue("id")})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(found))
}

// List は GET /projects を処理します。
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize, err := pageSizeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	result, err := h.projects.ListProjects(r.Context(), project.ListProjectsInput{
		CompanyID: r.URL.Query().Get("company_id"),
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	resp := listProjectsResponse{
		Projects:      make([]projectResponse, 0, len(result.Projects)),
		NextPageToken: result.NextPageToken,
	}
	for _, p := range result.Projects {
		resp.Projects = append(resp.Projects, toProjectResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update は PUT /projects/{id} を処理します。
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	updated, err := h.projects.UpdateProject(r.Context(), project.UpdateProjectInput{
		ID:           r.PathValue("id"),
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    startDate,
		StartDateSet: req.StartDate != nil,
		EndDate:      endDate,
		EndDateSet:   req.EndDate != nil,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(updated))
}

// Delete は DELETE /projects/{id} を処理します。
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteProject(r.Context(), project.DeleteProjectInput{ID: r.PathValue("id")}); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Assign は POST /project-assignments を処理します。admin または manager のみ実行できます。
func (h *ProjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok || !principal.Role.IsAdminOrManager() {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	var req assignEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.projects.AssignEmployee(r.Context(), project.AssignEmployeeInput{
		ProjectID:  req.ProjectID,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assignmentResponse{
		ID:         created.ID,
		ProjectID:  created.ProjectID,
		EmployeeID: created.EmployeeID,
		AssignedAt: created.AssignedAt,
	})
}

func toProjectResponse(p *project.Project) projectResponse {
	resp := projectResponse{
		ID:                p.ID,
		CompanyID:         p.CompanyID,
		DepartmentID:      p.DepartmentID,
		Name:              p.Name,
		Description:       p.Description,
		StartDate:         formatDate(p.StartDate),
		EndDate:           formatDate(p.EndDate),
		IsActive:          p.IsActive,
		NumberOfEmployees: p.NumberOfEmployees,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Company != nil {
		resp.Company = &snapshotBody{ID: p.Company.ID, Name: p.Company.Name}
	}
	if p.Department != nil {
		resp.Department = &snapshotBody{ID: p.Department.ID, Name: p.Department.Name}
	}
	return resp
}
