package contract

import (
	"context"

	"socioscope-be/internal/entity"
	"socioscope-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnalystRepository interface {
	Create(ctx context.Context, analyst *entity.Analyst) error
	Update(ctx context.Context, analyst *entity.Analyst) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analyst, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Analyst, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error

	// Magic link tokens
	CreateLoginToken(ctx context.Context, token *entity.LoginToken) error
	FindLoginToken(ctx context.Context, specs ...specification.Specification) (*entity.LoginToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpiredTokens(ctx context.Context) error
}
