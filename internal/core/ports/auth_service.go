package ports

import (
	"context"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role, teamID string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
