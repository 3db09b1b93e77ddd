package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/company"
)

// CompanyHandler は会社リソースのエンドポイントです。
type CompanyHandler struct {
	companies company.UseCase
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(companies company.UseCase) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

type companyResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	NumberOfEmployees   int       `json:"number_of_employees"`
	NumberOfDepartments int       `json:"number_of_departments"`
	NumberOfProjects    int       `json:"number_of_projects"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type listCompaniesResponse struct {
	Companies     []companyResponse `json:"companies"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

type createCompanyRequest struct {
	Name string `json:"name"`
}

type updateCompanyRequest struct {
	Name *string `json:"name"`
}

// Create は POST /companies を処理します。
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.companies.CreateCompany(r.Context(), company.CreateCompanyInput{Name: req.Name})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCompanyResponse(created))
}

// Get は GET /companies/{id} を処理します。
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.companies.GetCompany(r.Context(), company.GetCompanyInput{ID: r.PathValue("id")})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyResponse(found))
}

// List は GET /companies を処理します。
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize, err := pageSizeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	result, err := h.companies.ListCompanies(r.Context(), company.ListCompaniesInput{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	resp := listCompaniesResponse{
		Companies:     make([]companyResponse, 0, len(result.Companies)),
		NextPageToken: result.NextPageToken,
	}
	for _, c := range result.Companies {
		resp.Companies = append(resp.Companies, toCompanyResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update は PUT /companies/{id} を処理します。
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.companies.UpdateCompany(r.Context(), company.UpdateCompanyInput{
		ID:   r.PathValue("id"),
		Name: req.Name,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

// Delete は DELETE /companies/{id} を処理します。
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companies.DeleteCompany(r.Context(), company.DeleteCompanyInput{ID: r.PathValue("id")}); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toCompanyResponse(c *company.Company) companyResponse {
	return companyResponse{
		ID:                  c.ID,
		Name:                c.Name,
		NumberOfEmployees:   c.NumberOfEmployees,
		NumberOfDepartments: c.NumberOfDepartments,
		NumberOfProjects:    c.NumberOfProjects,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func pageSizeFromQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page_size")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
