package storage

import (
	"context"

	"github.com/briandconnelly/seeds/internal/model"
)

// Store persists run metadata and the per-epoch aggregate records a
// simulation produces.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	AppendEpoch(ctx context.Context, record model.EpochRecord) error
	GetEpochs(ctx context.Context, runID string) ([]model.EpochRecord, bool, error)
}
