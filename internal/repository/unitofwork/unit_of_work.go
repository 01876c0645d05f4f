package unitofwork

import (
	"context"

	"socioscope-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AnalystRepository() contract.AnalystRepository
	ExchangeRepository() contract.ExchangeRepository
}
