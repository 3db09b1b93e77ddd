package handler

import (
	"net/http"
	"time"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/employee"
)

// EmployeeHandler は社員リソースのエンドポイントです。
// すべての操作は admin または manager ロールに限定されます。
type EmployeeHandler struct {
	employees employee.UseCase
	now       func() time.Time
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(employees employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{
		employees: employees,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type employeeResponse struct {
	ID           string        `json:"id"`
	CompanyID    string        `json:"company_id"`
	DepartmentID string        `json:"department_id"`
	UserID       string        `json:"user_id"`
	FirstName    string        `json:"first_name"`
	MiddleName   string        `json:"middle_name"`
	LastName     string        `json:"last_name"`
	Email        string        `json:"email"`
	MobileNumber string        `json:"mobile_number"`
	Address      string        `json:"address"`
	Position     string        `json:"position"`
	HiredOn      *string       `json:"hired_on"`
	DaysEmployed *int          `json:"days_employed"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Company      *snapshotBody `json:"company,omitempty"`
	Department   *snapshotBody `json:"department,omitempty"`
}

type listEmployeesResponse struct {
	Employees     []employeeResponse `json:"employees"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

type createEmployeeRequest struct {
	CompanyID    string  `json:"company_id"`
	DepartmentID string  `json:"department_id"`
	UserID       string  `json:"user_id"`
	FirstName    string  `json:"first_name"`
	MiddleName   string  `json:"middle_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	MobileNumber string  `json:"mobile_number"`
	Address      string  `json:"address"`
	Position     string  `json:"position"`
	HiredOn      *string `json:"hired_on"`
}

type updateEmployeeRequest struct {
	DepartmentID *string `json:"department_id"`
	FirstName    *string `json:"first_name"`
	MiddleName   *string `json:"middle_name"`
	LastName     *string `json:"last_name"`
	MobileNumber *string `json:"mobile_number"`
	Address      *string `json:"address"`
	Position     *string `json:"position"`
	HiredOn      *string `json:"hired_on"`
}

func (h *EmployeeHandler) requireManagement(w http.ResponseWriter, r *http.Request) bool {
	principal, ok := principalFrom(r.Context())
	if !ok || !principal.Role.IsAdminOrManager() {
		writeError(w, http.StatusForbidden, "permission denied")
		return false
	}
	return true
}

// Create は POST /employees を処理します。
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireManagement(w, r) {
		return
	}

	var req createEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	hiredOn, err := parseDate(req.HiredOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hired_on must be YYYY-MM-DD")
		return
	}

	created, err := h.employees.CreateEmployee(r.Context(), employee.CreateEmployeeInput{
		CompanyID:    req.CompanyID,
		DepartmentID: req.DepartmentID,
		UserID:       req.UserID,
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Position:     req.Position,
		HiredOn:      hiredOn,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toEmployeeResponse(created))
}

// Get は GET /employees/{id} を処理します。
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireManagement(w, r) {
		return
	}

	found, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: r.PathValue("id")})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toEmployeeResponse(found))
}

// List は GET /employees を処理します。
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireManagement(w, r) {
		return
	}

	pageSize, err := pageSizeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	result, err := h.employees.ListEmployees(r.Context(), employee.ListEmployeesInput{
		CompanyID:    r.URL.Query().Get("company_id"),
		DepartmentID: r.URL.Query().Get("department_id"),
		PageSize:     pageSize,
		PageToken:    r.URL.Query().Get("page_token"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	resp := listEmployeesResponse{
		Employees:     make([]employeeResponse, 0, len(result.Employees)),
		NextPageToken: result.NextPageToken,
	}
	for _, e := range result.Employees {
		resp.Employees = append(resp.Employees, h.toEmployeeResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update は PUT /employees/{id} を処理します。
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireManagement(w, r) {
		return
	}

	var req updateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	hiredOn, err := parseDate(req.HiredOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hired_on must be YYYY-MM-DD")
		return
	}

	updated, err := h.employees.UpdateEmployee(r.Context(), employee.UpdateEmployeeInput{
		ID:           r.PathValue("id"),
		DepartmentID: req.DepartmentID,
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Position:     req.Position,
		HiredOn:      hiredOn,
		HiredOnSet:   req.HiredOn != nil,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toEmployeeResponse(updated))
}

// Delete は DELETE /employees/{id} を処理します。
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireManagement(w, r) {
		return
	}

	if err := h.employees.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{ID: r.PathValue("id")}); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) toEmployeeResponse(e *employee.Employee) employeeResponse {
	resp := employeeResponse{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		DepartmentID: e.DepartmentID,
		UserID:       e.UserID,
		FirstName:    e.FirstName,
		MiddleName:   e.MiddleName,
		LastName:     e.LastName,
		Email:        e.Email,
		MobileNumber: e.MobileNumber,
		Address:      e.Address,
		Position:     e.Position,
		HiredOn:      formatDate(e.HiredOn),
		DaysEmployed: e.DaysEmployed(h.now()),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Company != nil {
		resp.Company = &snapshotBody{ID: e.Company.ID, Name: e.Company.Name}
	}
	if e.Department != nil {
		resp.Department = &snapshotBody{ID: e.Department.ID, Name: e.Department.Name}
	}
	return resp
}
