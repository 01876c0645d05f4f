package contract

import (
	"context"

	"socioscope-be/internal/entity"
	"socioscope-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ExchangeRepository interface {
	Create(ctx context.Context, exchange *entity.RagExchange) error
	Update(ctx context.Context, exchange *entity.RagExchange) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RagExchange, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RagExchange, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	NextOrdinal(ctx context.Context, sessionID uuid.UUID) (int, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
