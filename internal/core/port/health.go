package port

import "context"

type HealthCheckerPort interface {
	Ping(ctx context.Context) error
}
