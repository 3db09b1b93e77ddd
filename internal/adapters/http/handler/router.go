package handler

import "net/http"

// RouterDeps はルーター構築に必要なハンドラ群です。
type RouterDeps struct {
	Auth          *AuthHandler
	Companies     *CompanyHandler
	Departments   *DepartmentHandler
	Projects      *ProjectHandler
	Employees     *EmployeeHandler
	Reviews       *ReviewHandler
	Authenticator Authenticator
}

// NewRouter は全エンドポイントを登録した ServeMux を返します。
// /register と /login 以外はトークン認証を必要とします。
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(deps.Authenticator, fn)
	}

	mux.HandleFunc("POST /register", deps.Auth.Register)
	mux.HandleFunc("POST /login", deps.Auth.Login)

	mux.Handle("POST /companies", protected(deps.Companies.Create))
	mux.Handle("GET /companies", protected(deps.Companies.List))
	mux.Handle("GET /companies/{id}", protected(deps.Companies.Get))
	mux.Handle("PUT /companies/{id}", protected(deps.Companies.Update))
	mux.Handle("DELETE /companies/{id}", protected(deps.Companies.Delete))

	mux.Handle("POST /departments", protected(deps.Departments.Create))
	mux.Handle("GET /departments", protected(deps.Departments.List))
	mux.Handle("GET /departments/{id}", protected(deps.Departments.Get))
	mux.Handle("PUT /departments/{id}", protected(deps.Departments.Update))
	mux.Handle("DELETE /departments/{id}", protected(deps.Departments.Delete))

	mux.Handle("POST /projects", protected(deps.Projects.Create))
	mux.Handle("GET /projects", protected(deps.Projects.List))
	mux.Handle("GET /projects/{id}", protected(deps.Projects.Get))
	mux.Handle("PUT /projects/{id}", protected(deps.Projects.Update))
	mux.Handle("DELETE /projects/{id}", protected(deps.Projects.Delete))
	mux.Handle("POST /project-assignments", protected(deps.Projects.Assign))

	mux.Handle("POST /employees", protected(deps.Employees.Create))
	mux.Handle("GET /employees", protected(deps.Employees.List))
	mux.Handle("GET /employees/{id}", protected(deps.Employees.Get))
	mux.Handle("PUT /employees/{id}", protected(deps.Employees.Update))
	mux.Handle("DELETE /employees/{id}", protected(deps.Employees.Delete))

	mux.Handle("POST /performance-reviews", protected(deps.Reviews.Create))
	mux.Handle("GET /performance-reviews", protected(deps.Reviews.List))
	mux.Handle("GET /performance-reviews/{id}", protected(deps.Reviews.Get))
	mux.Handle("PUT /performance-reviews/{id}", protected(deps.Reviews.Update))
	mux.Handle("DELETE /performance-reviews/{id}", protected(deps.Reviews.Delete))
	mux.Handle("POST /performance-reviews/{id}/change-stage", protected(deps.Reviews.ChangeStage))

	return mux
}
