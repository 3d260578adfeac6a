package repository

import (
	"context"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

// Repository persists projects. Firestore backs it in production; Memory
// serves tests and credential-less development runs.
type Repository interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, p domain.Project) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error)
	DeleteMany(ctx context.Context, ids []string) error
}
