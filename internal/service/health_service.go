package service

import (
	"context"
	"time"

	"healthassist-be/internal/dto"
	"healthassist-be/internal/repository/contract"
	"healthassist-be/pkg/conversation/response"
)

type IHealthService interface {
	Health(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	repo      contract.ChatSessionRepository
	generator *response.Generator
}

func NewHealthService(repo contract.ChatSessionRepository, generator *response.Generator) IHealthService {
	return &healthService{repo: repo, generator: generator}
}

func (s *healthService) Health(ctx context.Context) *dto.HealthResponse {
	generation := "inactive"
	if s.generator != nil && s.generator.Available() {
		generation = "active"
	}

	store := "connected"
	if err := s.repo.Ping(ctx); err != nil {
		store = "disconnected"
	}

	return &dto.HealthResponse{
		Status:     "ok",
		Generation: generation,
		Store:      store,
		Timestamp:  time.Now().UTC(),
	}
}
