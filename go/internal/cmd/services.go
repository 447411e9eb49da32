package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/config"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/orchestrator"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/repository"
)

type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Draft        *draft.Service
}

func setupServices(pool *pgxpool.Pool, cfg *config.Config) *Services {
	// Wire up dependency injection chain
	// Database pool → Repository → Orchestrator → Service
	draftRepo := repository.NewRepository(pool)
	engine := orchestrator.NewOrchestrator(draftRepo, cfg.Draft)

	return &Services{
		Orchestrator: engine,
		Draft:        draft.NewService(engine),
	}
}
