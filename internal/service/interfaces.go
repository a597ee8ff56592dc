package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"record_syncer/internal/domain"
)

type Source interface {
	FetchAll(ctx context.Context, limit int) ([]domain.Record, error)
}

type Sink interface {
	Upsert(ctx context.Context, record domain.Record) (domain.UpsertStatus, error)
}
