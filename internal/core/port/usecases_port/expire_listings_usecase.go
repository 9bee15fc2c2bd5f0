package usecases_port

import (
	"context"
	"time"
)

type ExpireListingsUseCase interface {
	Execute(ctx context.Context, now time.Time) (int, error)
}
