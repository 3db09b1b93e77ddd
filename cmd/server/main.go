package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/company"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/department"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/employee"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/project"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/review"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/user"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	userRepo := postgres.NewUserRepository(dbPool)
	tokenRepo := postgres.NewTokenRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	departmentRepo := postgres.NewDepartmentRepository(dbPool)
	projectRepo := postgres.NewProjectRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	reviewRepo := postgres.NewReviewRepository(dbPool)

	userSvc := user.NewService(userRepo, tokenRepo, nil, txManager)
	companySvc := company.NewService(companyRepo, nil, txManager)
	departmentSvc := department.NewService(departmentRepo, nil, txManager)
	projectSvc := project.NewService(projectRepo, nil, txManager)
	employeeSvc := employee.NewService(employeeRepo, nil, txManager)
	reviewSvc := review.NewService(reviewRepo, nil, txManager, user.NewReviewAuthorizer())

	router := handler.NewRouter(handler.RouterDeps{
		Auth:          handler.NewAuthHandler(userSvc),
		Companies:     handler.NewCompanyHandler(companySvc),
		Departments:   handler.NewDepartmentHandler(departmentSvc),
		Projects:      handler.NewProjectHandler(projectSvc),
		Employees:     handler.NewEmployeeHandler(employeeSvc),
		Reviews:       handler.NewReviewHandler(reviewSvc, employeeSvc),
		Authenticator: userSvc,
	})

	httpServer := server.New(cfg.Server.ListenAddr, router, cfg.Server.ShutdownTimeout)

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
