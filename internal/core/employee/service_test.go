package employee

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

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	sequence  int
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func cloneEmployee(e *Employee) *Employee {
	clone := *e
	if e.HiredOn != nil {
		hired := *e.HiredOn
		clone.HiredOn = &hired
	}
	return &clone
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	for _, existing := range r.employees {
		if existing.Email == e.Email || existing.UserID == e.UserID {
			return nil, ErrEmailAlreadyExists
		}
	}

	clone := cloneEmployee(e)
	r.sequence++
	clone.ID = fmt.Sprintf("emp-%d", r.sequence)
	r.employees[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneEmployee(clone), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[e.ID] = cloneEmployee(e)
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) FindByUserID(_ context.Context, userID string) (*Employee, error) {
	for _, e := range r.employees {
		if e.UserID == userID {
			return cloneEmployee(e), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	result := make([]*Employee, 0, len(r.order))
	for _, id := range r.order {
		e, ok := r.employees[id]
		if !ok {
			continue
		}
		if filter.CompanyID != "" && e.CompanyID != filter.CompanyID {
			continue
		}
		if filter.DepartmentID != "" && e.DepartmentID != filter.DepartmentID {
			continue
		}
		result = append(result, cloneEmployee(e))
	}
	return result, "", nil
}

func validCreateInput() CreateEmployeeInput {
	return CreateEmployeeInput{
		CompanyID:    "company-1",
		DepartmentID: "dept-1",
		UserID:       "user-1",
		FirstName:    "Taro",
		LastName:     "Yamada",
		Email:        "Taro@Example.com",
		Position:     "Developer",
	}
}

func TestCreateEmployee(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: now}, nil)

	created, err := svc.CreateEmployee(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	if created.Email != "taro@example.com" {
		t.Fatalf("email must be normalized: %s", created.Email)
	}
	if created.HiredOn != nil {
		t.Fatal("hired_on must default to nil")
	}
}

func TestCreateEmployee_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	cases := []struct {
		name     string
		mutate   func(in *CreateEmployeeInput)
		expected error
	}{
		{name: "missing company", mutate: func(in *CreateEmployeeInput) { in.CompanyID = " " }, expected: ErrInvalidCompanyID},
		{name: "missing department", mutate: func(in *CreateEmployeeInput) { in.DepartmentID = "" }, expected: ErrInvalidDepartmentID},
		{name: "missing user", mutate: func(in *CreateEmployeeInput) { in.UserID = "" }, expected: ErrInvalidUserID},
		{name: "missing first name", mutate: func(in *CreateEmployeeInput) { in.FirstName = "  " }, expected: ErrInvalidName},
		{name: "missing last name", mutate: func(in *CreateEmployeeInput) { in.LastName = "" }, expected: ErrInvalidName},
		{name: "bad email", mutate: func(in *CreateEmployeeInput) { in.Email = "not-an-email" }, expected: ErrInvalidEmail},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateInput()
			tc.mutate(&in)
			if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestCreateEmployee_DuplicateUser(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	if _, err := svc.CreateEmployee(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	in := validCreateInput()
	in.Email = "other@example.com"
	if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestGetEmployeeByUserID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	created, err := svc.CreateEmployee(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	found, err := svc.GetEmployeeByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetEmployeeByUserID error: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("unexpected employee: %+v", found)
	}

	if _, err := svc.GetEmployeeByUserID(context.Background(), "user-404"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestUpdateEmployee_HiredOn(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	created, err := svc.CreateEmployee(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	hired := time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC)
	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:         created.ID,
		HiredOn:    &hired,
		HiredOnSet: true,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee error: %v", err)
	}

	expected := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	if updated.HiredOn == nil || !updated.HiredOn.Equal(expected) {
		t.Fatalf("hired_on not normalized to date: %v", updated.HiredOn)
	}
}

func TestDaysEmployed(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)

	e := &Employee{}
	if e.DaysEmployed(now) != nil {
		t.Fatal("days employed must be nil without hired_on")
	}

	hired := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	e.HiredOn = &hired
	days := e.DaysEmployed(now)
	if days == nil || *days != 30 {
		t.Fatalf("expected 30 days, got %v", days)
	}
}
