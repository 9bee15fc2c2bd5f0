package port

import "context"

// EventListenerPort - компонент, который слушает очередь и вызывает use case
type EventListenerPort interface {
	// Start блокируется до отмены ctx или разрыва соединения
	Start(ctx context.Context) error

	Close() error
}
